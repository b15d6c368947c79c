package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// treeNode is a split node, or a leaf when Left is negative.
type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

// DecisionTree is a CART classification tree stored as a flat node list.
type DecisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *DecisionTree) leaf(row []float64) []float64 {
	i := 0
	for t.Nodes[i].Left >= 0 {
		n := t.Nodes[i]
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

// Depth returns the longest root-to-leaf path length.
func (t *DecisionTree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Left < 0 {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// RandomForest is a bagged ensemble of Gini trees, each split considering
// a random subset of sqrt(features) candidates.
type RandomForest struct {
	Params      Params         `json:"params"`
	Classes     int            `json:"n_classes"`
	Features    int            `json:"n_features"`
	Trees       []DecisionTree `json:"trees"`
	Importances []float64      `json:"feature_importances"`
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(params Params) *RandomForest {
	return &RandomForest{Params: params}
}

// Name implements Estimator.
func (f *RandomForest) Name() string { return f.Params.Name }

// Fit grows Params.NEstimators trees on bootstrap samples of X.
func (f *RandomForest) Fit(X mat.Matrix, y []int) error {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return fmt.Errorf("cannot fit on an empty matrix")
	}
	if len(y) != n {
		return fmt.Errorf("got %d labels for %d rows", len(y), n)
	}
	classes := 0
	for _, v := range y {
		if v < 0 {
			return fmt.Errorf("negative class label %d", v)
		}
		classes = max(classes, v+1)
	}

	rows := rowsOf(X)
	rng := rand.New(rand.NewPCG(f.Params.Seed, f.Params.Seed))
	mtry := max(1, int(math.Sqrt(float64(d))))

	f.Classes, f.Features = classes, d
	f.Trees = make([]DecisionTree, 0, f.Params.NEstimators)
	importances := make([]float64, d)

	for t := 0; t < f.Params.NEstimators; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		b := &treeBuilder{
			rows:       rows,
			y:          y,
			classes:    classes,
			params:     f.Params,
			mtry:       mtry,
			rng:        rng,
			importance: make([]float64, d),
		}
		b.grow(sample, 0)
		f.Trees = append(f.Trees, DecisionTree{Nodes: b.nodes})

		if total := floats.Sum(b.importance); total > 0 {
			floats.AddScaled(importances, 1/total, b.importance)
		}
	}

	if total := floats.Sum(importances); total > 0 {
		floats.Scale(1/total, importances)
	}
	f.Importances = importances
	return nil
}

// PredictProba averages the leaf class distributions of every tree.
func (f *RandomForest) PredictProba(X mat.Matrix) *mat.Dense {
	n, _ := X.Dims()
	if n == 0 {
		return nil
	}
	out := mat.NewDense(n, max(f.Classes, 1), nil)
	if len(f.Trees) == 0 {
		return out
	}
	row := make([]float64, f.Features)
	acc := make([]float64, f.Classes)
	for i := 0; i < n; i++ {
		mat.Row(row, i, X)
		for j := range acc {
			acc[j] = 0
		}
		for t := range f.Trees {
			floats.Add(acc, f.Trees[t].leaf(row))
		}
		floats.Scale(1/float64(len(f.Trees)), acc)
		out.SetRow(i, acc)
	}
	return out
}

// Predict returns the most probable class per row; ties go to the lower
// class.
func (f *RandomForest) Predict(X mat.Matrix) []int {
	n, _ := X.Dims()
	if len(f.Trees) == 0 || n == 0 {
		return make([]int, n)
	}
	proba := f.PredictProba(X)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = floats.MaxIdx(proba.RawRowView(i))
	}
	return out
}

type treeBuilder struct {
	rows    [][]float64
	y       []int
	classes int
	params  Params
	mtry    int
	rng     *rand.Rand

	nodes      []treeNode
	importance []float64
}

type split struct {
	feature   int
	threshold float64
	score     float64
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	counts := b.classCounts(idx)
	impurity := gini(counts, len(idx))

	id := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Left: -1, Right: -1})

	atDepth := b.params.MaxDepth > 0 && depth >= b.params.MaxDepth
	if atDepth || len(idx) < b.params.MinSamplesSplit || impurity == 0 {
		b.nodes[id].Value = distribution(counts, len(idx))
		return id
	}

	best, ok := b.bestSplit(idx, impurity)
	if !ok {
		b.nodes[id].Value = distribution(counts, len(idx))
		return id
	}

	var left, right []int
	for _, i := range idx {
		if b.rows[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	b.importance[best.feature] += float64(len(idx))*impurity - best.score

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id].Feature = best.feature
	b.nodes[id].Threshold = best.threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

// bestSplit scans features in random order for the threshold minimising
// the weighted child Gini impurity. It stops after mtry features once a
// valid split exists, and fails when no feature yields a split that honours
// MinSamplesLeaf and improves on the parent.
func (b *treeBuilder) bestSplit(idx []int, impurity float64) (split, bool) {
	n := len(idx)
	best := split{score: float64(n) * impurity}
	found := false

	sorted := make([]int, n)
	left := make([]int, b.classes)
	right := make([]int, b.classes)

	for visited, f := range b.rng.Perm(len(b.rows[0])) {
		if visited >= b.mtry && found {
			break
		}
		copy(sorted, idx)
		sort.Slice(sorted, func(i, j int) bool {
			return b.rows[sorted[i]][f] < b.rows[sorted[j]][f]
		})
		for c := range left {
			left[c] = 0
			right[c] = 0
		}
		for _, i := range sorted {
			right[b.y[i]]++
		}

		for pos := 0; pos < n-1; pos++ {
			c := b.y[sorted[pos]]
			left[c]++
			right[c]--

			cur, next := b.rows[sorted[pos]][f], b.rows[sorted[pos+1]][f]
			if cur == next {
				continue
			}
			nl, nr := pos+1, n-pos-1
			if nl < b.params.MinSamplesLeaf || nr < b.params.MinSamplesLeaf {
				continue
			}
			score := float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)
			if score < best.score-1e-12 {
				best = split{feature: f, threshold: (cur + next) / 2, score: score}
				found = true
			}
		}
	}
	return best, found
}

func (b *treeBuilder) classCounts(idx []int) []int {
	counts := make([]int, b.classes)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

func distribution(counts []int, n int) []float64 {
	out := make([]float64, len(counts))
	if n == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(n)
	}
	return out
}

func rowsOf(X mat.Matrix) [][]float64 {
	n, _ := X.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows
}
