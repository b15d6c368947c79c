package model

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// StratifiedSplit partitions row indices into train and test sets so that
// each class keeps its share of the test set. Both index lists are sorted.
func StratifiedSplit(y []int, testSize float64, seed uint64) (train, test []int) {
	n := len(y)
	if n == 0 {
		return nil, nil
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTest = min(max(nTest, 0), n)

	byClass := make(map[int][]int)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	// Proportional quotas, with the remainder going to the largest
	// fractional parts.
	quota := make(map[int]int, len(classes))
	type frac struct {
		class int
		part  float64
	}
	var fracs []frac
	assigned := 0
	for _, c := range classes {
		exact := float64(len(byClass[c])) * float64(nTest) / float64(n)
		quota[c] = int(math.Floor(exact))
		assigned += quota[c]
		fracs = append(fracs, frac{c, exact - math.Floor(exact)})
	}
	sort.SliceStable(fracs, func(i, j int) bool { return fracs[i].part > fracs[j].part })
	for i := 0; assigned < nTest && i < len(fracs); i++ {
		c := fracs[i].class
		if quota[c] < len(byClass[c]) {
			quota[c]++
			assigned++
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		test = append(test, idx[:quota[c]]...)
		train = append(train, idx[quota[c]:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// selectRows copies the given rows of X.
func selectRows(X mat.Matrix, idx []int) *mat.Dense {
	_, d := X.Dims()
	out := mat.NewDense(len(idx), d, nil)
	for i, r := range idx {
		out.SetRow(i, mat.Row(nil, r, X))
	}
	return out
}

func selectLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
