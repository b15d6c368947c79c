package model

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// KMeans is Lloyd's algorithm with k-means++ seeding, restarted NInit times
// keeping the lowest inertia.
type KMeans struct {
	Params     Params      `json:"params"`
	Centers    [][]float64 `json:"centers"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"n_iter"`

	// Labels are the cluster assignments of the training rows.
	Labels []int `json:"-"`
}

// NewKMeans creates an unfitted clusterer.
func NewKMeans(params Params) *KMeans {
	return &KMeans{Params: params}
}

// Name implements Estimator.
func (k *KMeans) Name() string { return k.Params.Name }

// Fit clusters the rows of X.
func (k *KMeans) Fit(X mat.Matrix) error {
	n, d := X.Dims()
	clusters := k.Params.Clusters
	if n < clusters {
		return fmt.Errorf("need at least %d rows to form %d clusters, got %d", clusters, clusters, n)
	}
	rows := rowsOf(X)
	tol := k.Params.Tol * meanVariance(X, d)
	rng := rand.New(rand.NewPCG(k.Params.Seed, k.Params.Seed))

	k.Inertia = math.Inf(1)
	for run := 0; run < k.Params.NInit; run++ {
		centers := seedCenters(rows, clusters, rng)
		labels, inertia, iters := lloyd(rows, centers, k.Params.MaxIter, tol)
		if inertia < k.Inertia {
			k.Centers, k.Labels, k.Inertia, k.Iterations = centers, labels, inertia, iters
		}
	}
	return nil
}

// Predict assigns each row to its nearest center.
func (k *KMeans) Predict(X mat.Matrix) []int {
	n, _ := X.Dims()
	out := make([]int, n)
	if len(k.Centers) == 0 {
		return out
	}
	for i, row := range rowsOf(X) {
		out[i], _ = nearest(row, k.Centers)
	}
	return out
}

// Sizes counts the training rows per cluster.
func (k *KMeans) Sizes() []int {
	sizes := make([]int, len(k.Centers))
	for _, l := range k.Labels {
		sizes[l]++
	}
	return sizes
}

func meanVariance(X mat.Matrix, d int) float64 {
	if d == 0 {
		return 0
	}
	total := 0.0
	for j := 0; j < d; j++ {
		_, v := stat.PopMeanVariance(mat.Col(nil, j, X), nil)
		total += v
	}
	return total / float64(d)
}

// seedCenters picks k initial centers by D² sampling.
func seedCenters(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := rows[rng.IntN(len(rows))]
	centers = append(centers, append([]float64(nil), first...))

	dist := make([]float64, len(rows))
	for len(centers) < k {
		total := 0.0
		for i, row := range rows {
			_, dist[i] = nearest(row, centers)
			total += dist[i]
		}

		pick := rng.IntN(len(rows))
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if acc >= target && d > 0 {
					pick = i
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), rows[pick]...))
	}
	return centers
}

// lloyd refines centers in place until the squared center shift falls to
// tol or maxIter is reached.
func lloyd(rows [][]float64, centers [][]float64, maxIter int, tol float64) ([]int, float64, int) {
	k, d := len(centers), len(centers[0])
	labels := make([]int, len(rows))
	iters := 0

	for iters < maxIter {
		iters++
		for i, row := range rows {
			labels[i], _ = nearest(row, centers)
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, d)
		}
		for i, row := range rows {
			floats.Add(sums[labels[i]], row)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(centers[c], sums[c])
			copy(centers[c], sums[c])
		}
		if shift <= tol {
			break
		}
	}

	inertia := 0.0
	for i, row := range rows {
		var dist float64
		labels[i], dist = nearest(row, centers)
		inertia += dist
	}
	return labels, inertia, iters
}

// nearest returns the index of the closest center and the squared distance.
func nearest(row []float64, centers [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDist(row, center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
