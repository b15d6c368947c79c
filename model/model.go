// Package model trains the churn classifier and the content segmentation
// clustering on the processed catalog, evaluates them and persists them as
// JSON artifacts.
package model

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Estimator is the contract shared by every trained model.
type Estimator interface {
	// Name returns the identifier the model was created under.
	Name() string

	// Predict returns one class or cluster label per row of X.
	Predict(X mat.Matrix) []int
}

// Classifier is a supervised estimator.
type Classifier interface {
	Estimator

	// Fit trains on the rows of X with labels y.
	Fit(X mat.Matrix, y []int) error

	// PredictProba returns per-class probabilities, one row per sample.
	PredictProba(X mat.Matrix) *mat.Dense
}

// Clusterer is an unsupervised estimator.
type Clusterer interface {
	Estimator

	// Fit partitions the rows of X.
	Fit(X mat.Matrix) error
}

// Params holds hyperparameters for every estimator kind. Fields that do not
// apply to a model are ignored by its factory.
type Params struct {
	Name string `json:"name"`
	Seed uint64 `json:"seed"`

	NEstimators     int `json:"n_estimators,omitempty"`
	MaxDepth        int `json:"max_depth,omitempty"`
	MinSamplesSplit int `json:"min_samples_split,omitempty"`
	MinSamplesLeaf  int `json:"min_samples_leaf,omitempty"`

	Clusters int     `json:"n_clusters,omitempty"`
	NInit    int     `json:"n_init,omitempty"`
	MaxIter  int     `json:"max_iter,omitempty"`
	Tol      float64 `json:"tol,omitempty"`
}

// DefaultSeed makes every random draw in the package reproducible.
const DefaultSeed = 42

// DefaultForestParams returns the churn classifier settings.
func DefaultForestParams() *Params {
	return &Params{
		Name:            "churn_rf",
		Seed:            DefaultSeed,
		NEstimators:     150,
		MaxDepth:        15,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
	}
}

// DefaultKMeansParams returns the segmentation settings.
func DefaultKMeansParams() *Params {
	return &Params{
		Name:     "kmeans",
		Seed:     DefaultSeed,
		Clusters: 4,
		NInit:    10,
		MaxIter:  300,
		Tol:      1e-4,
	}
}

// Factory creates estimators of one kind.
type Factory interface {
	Create(params *Params) (Estimator, error)
	SupportedModels() []string
}

var (
	// ErrNotFitted is returned when a model is used before training.
	ErrNotFitted = errors.New("model is not fitted")
	// ErrInsufficientFeatures is returned when fewer than two candidate
	// feature columns are present.
	ErrInsufficientFeatures = errors.New("insufficient features for modeling")
)
