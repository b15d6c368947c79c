package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"cine-insights/catalog"
	"cine-insights/charts"
	"cine-insights/console"
)

// TestSize is the held-out share of the churn dataset.
const TestSize = 0.2

// FeatureImportance is the normalised impurity decrease of one feature.
type FeatureImportance struct {
	Feature    string
	Importance float64
}

// ChurnResult is the outcome of training the churn classifier.
type ChurnResult struct {
	Name        string
	Features    []string
	TrainSize   int
	TestSize    int
	Metrics     Metrics
	Importances []FeatureImportance
	Scaler      *StandardScaler
	Forest      *RandomForest
}

// SegmentationResult is the outcome of clustering the catalog.
type SegmentationResult struct {
	Features []string
	Sizes    []int
	// Means holds the unscaled feature means, one row per cluster.
	Means  [][]float64
	Scaler *StandardScaler
	KMeans *KMeans
}

// Results collects everything one modeling run produced.
type Results struct {
	Churn        *ChurnResult
	Segmentation *SegmentationResult
	Models       []string
	Artifacts    []string
	Figures      []string
}

// Trainer runs the modeling stage.
type Trainer struct {
	manager    *Manager
	renderer   *charts.Renderer
	resultsDir string
	logger     *zap.Logger
	out        io.Writer

	forestParams *Params
	kmeansParams *Params
}

// NewTrainer creates a trainer writing artifacts to resultsDir. Figures are
// skipped when renderer is nil.
func NewTrainer(resultsDir string, renderer *charts.Renderer, logger *zap.Logger, out io.Writer) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Trainer{
		manager:      NewManager(),
		renderer:     renderer,
		resultsDir:   resultsDir,
		logger:       logger,
		out:          out,
		forestParams: DefaultForestParams(),
		kmeansParams: DefaultKMeansParams(),
	}
}

// WithParams overrides the estimator settings.
func (t *Trainer) WithParams(forest, kmeans *Params) *Trainer {
	if forest != nil {
		t.forestParams = forest
	}
	if kmeans != nil {
		t.kmeansParams = kmeans
	}
	return t
}

// TrainChurn fits the Random Forest on the synthetic churn label.
func (t *Trainer) TrainChurn(ds *catalog.Dataset) (*ChurnResult, error) {
	X, features, err := FeatureMatrix(ds, ChurnFeatures)
	if err != nil {
		return nil, err
	}
	seed := t.forestParams.Seed
	y := ChurnLabels(ds.Len(), ChurnRate, seed)

	trainIdx, testIdx := StratifiedSplit(y, TestSize, seed)
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, fmt.Errorf("not enough rows to split: %d", ds.Len())
	}
	yTrain, yTest := selectLabels(y, trainIdx), selectLabels(y, testIdx)

	scaler := &StandardScaler{}
	XTrain, err := scaler.FitTransform(selectRows(X, trainIdx))
	if err != nil {
		return nil, err
	}
	XTest, err := scaler.Transform(selectRows(X, testIdx))
	if err != nil {
		return nil, err
	}

	est, err := t.manager.GetOrCreateModel(ModelTypeRandomForest, t.forestParams)
	if err != nil {
		return nil, err
	}
	forest := est.(*RandomForest)

	t.logger.Info("training random forest",
		zap.Int("train_rows", len(trainIdx)),
		zap.Int("trees", t.forestParams.NEstimators),
		zap.Strings("features", features))
	if err := forest.Fit(XTrain, yTrain); err != nil {
		return nil, fmt.Errorf("failed to fit churn model: %w", err)
	}

	res := &ChurnResult{
		Name:      forest.Name(),
		Features:  features,
		TrainSize: len(trainIdx),
		TestSize:  len(testIdx),
		Metrics:   Evaluate(yTest, forest.Predict(XTest)),
		Scaler:    scaler,
		Forest:    forest,
	}
	for i, f := range features {
		res.Importances = append(res.Importances, FeatureImportance{Feature: f, Importance: forest.Importances[i]})
	}
	sort.SliceStable(res.Importances, func(i, j int) bool {
		return res.Importances[i].Importance > res.Importances[j].Importance
	})
	return res, nil
}

// TrainSegmentation clusters the catalog with K-Means.
func (t *Trainer) TrainSegmentation(ds *catalog.Dataset) (*SegmentationResult, error) {
	X, features, err := FeatureMatrix(ds, SegmentationFeatures)
	if err != nil {
		return nil, err
	}

	scaler := &StandardScaler{}
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, err
	}

	est, err := t.manager.GetOrCreateModel(ModelTypeKMeans, t.kmeansParams)
	if err != nil {
		return nil, err
	}
	km := est.(*KMeans)
	if err := km.Fit(scaled); err != nil {
		return nil, fmt.Errorf("failed to fit segmentation model: %w", err)
	}

	sizes := km.Sizes()
	means := make([][]float64, len(sizes))
	for c := range means {
		means[c] = make([]float64, len(features))
	}
	for i, label := range km.Labels {
		for j := range features {
			means[label][j] += X.At(i, j)
		}
	}
	for c := range means {
		if sizes[c] == 0 {
			continue
		}
		for j := range means[c] {
			means[c][j] /= float64(sizes[c])
		}
	}

	return &SegmentationResult{
		Features: features,
		Sizes:    sizes,
		Means:    means,
		Scaler:   scaler,
		KMeans:   km,
	}, nil
}

// Run trains both models, writes their artifacts and figures and prints
// the reports. Models lacking features are skipped with a warning.
func (t *Trainer) Run(ctx context.Context, ds *catalog.Dataset) (*Results, error) {
	results := &Results{}

	console.Banner(t.out, "CHURN PREDICTION MODEL TRAINING")
	churn, err := t.TrainChurn(ds)
	switch {
	case errors.Is(err, ErrInsufficientFeatures):
		t.logger.Warn("insufficient features for churn model", zap.Int("min", MinFeatures))
	case err != nil:
		return nil, err
	default:
		results.Churn = churn
		t.renderChurn(churn)
		if err := t.saveChurn(churn, results); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	console.Banner(t.out, "CUSTOMER SEGMENTATION ANALYSIS")
	seg, err := t.TrainSegmentation(ds)
	switch {
	case errors.Is(err, ErrInsufficientFeatures):
		t.logger.Warn("insufficient features for clustering", zap.Int("min", MinFeatures))
	case err != nil:
		return nil, err
	default:
		results.Segmentation = seg
		t.renderSegmentation(seg)
		if err := t.saveSegmentation(ds, seg, results); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	console.Banner(t.out, "MODEL PERFORMANCE COMPARISON")
	if results.Churn == nil {
		fmt.Fprintln(t.out, "No model results available")
	} else if err := t.savePerformance(results.Churn, results); err != nil {
		return nil, err
	}

	results.Models = t.manager.Models()
	t.logger.Info("modeling completed",
		zap.Int("models", len(results.Models)),
		zap.String("results_dir", t.resultsDir))
	return results, nil
}

func (t *Trainer) renderChurn(res *ChurnResult) {
	console.Heading(t.out, "Model Performance")
	console.KeyValues(t.out, [][2]string{
		{"Accuracy", fmt.Sprintf("%.3f", res.Metrics.Accuracy)},
		{"Precision", fmt.Sprintf("%.3f", res.Metrics.Precision)},
		{"Recall", fmt.Sprintf("%.3f", res.Metrics.Recall)},
		{"F1-Score", fmt.Sprintf("%.3f", res.Metrics.F1)},
	})

	console.Heading(t.out, "Top Feature Importances")
	rows := make([][]string, len(res.Importances))
	for i, fi := range res.Importances {
		rows[i] = []string{fi.Feature, fmt.Sprintf("%.4f", fi.Importance)}
	}
	console.Table(t.out, []string{"Feature", "Importance"}, rows)
}

func (t *Trainer) renderSegmentation(res *SegmentationResult) {
	console.Heading(t.out, "Cluster Distribution")
	rows := make([][]string, len(res.Sizes))
	for c, n := range res.Sizes {
		rows[c] = []string{fmt.Sprintf("%d", c), fmt.Sprintf("%d", n)}
	}
	console.Table(t.out, []string{"Cluster", "Titles"}, rows)

	console.Heading(t.out, "Cluster Characteristics")
	headers := append([]string{"Cluster"}, res.Features...)
	rows = make([][]string, len(res.Means))
	for c, means := range res.Means {
		row := []string{fmt.Sprintf("%d", c)}
		for _, m := range means {
			row = append(row, fmt.Sprintf("%.3f", m))
		}
		rows[c] = row
	}
	console.Table(t.out, headers, rows)
}

func (t *Trainer) saveChurn(res *ChurnResult, results *Results) error {
	if t.renderer != nil {
		path, err := t.renderer.ConfusionMatrix(res.Metrics.Confusion, "Churn Prediction")
		if err != nil {
			return err
		}
		results.Figures = append(results.Figures, path)
	}

	path := filepath.Join(t.resultsDir, FileChurnModel)
	if err := SaveJSON(path, &ChurnArtifact{
		Model:    ModelTypeRandomForest,
		Features: res.Features,
		Scaler:   res.Scaler,
		Forest:   res.Forest,
		Metrics:  res.Metrics,
	}); err != nil {
		return err
	}
	t.logger.Info("model saved", zap.String("file", FileChurnModel))
	results.Artifacts = append(results.Artifacts, path)
	return nil
}

func (t *Trainer) saveSegmentation(ds *catalog.Dataset, res *SegmentationResult, results *Results) error {
	if t.renderer != nil {
		X, _, err := FeatureMatrix(ds, res.Features)
		if err != nil {
			return err
		}
		scaled, err := res.Scaler.Transform(X)
		if err != nil {
			return err
		}
		n, _ := scaled.Dims()
		points := make([][]float64, n)
		for i := range points {
			points[i] = mat.Row(nil, i, scaled)
		}
		path, err := t.renderer.Clusters(points, res.KMeans.Labels, len(res.Sizes))
		if err != nil {
			return err
		}
		results.Figures = append(results.Figures, path)
	}

	path := filepath.Join(t.resultsDir, FileSegmentationModel)
	if err := SaveJSON(path, &SegmentationArtifact{
		Model:    ModelTypeKMeans,
		Features: res.Features,
		Scaler:   res.Scaler,
		KMeans:   res.KMeans,
		Sizes:    res.Sizes,
	}); err != nil {
		return err
	}
	t.logger.Info("model saved", zap.String("file", FileSegmentationModel))
	results.Artifacts = append(results.Artifacts, path)
	return nil
}

func (t *Trainer) savePerformance(res *ChurnResult, results *Results) error {
	if t.renderer != nil {
		path, err := t.renderer.ModelPerformance([]charts.Metric{
			{Name: "accuracy", Value: res.Metrics.Accuracy},
			{Name: "precision", Value: res.Metrics.Precision},
			{Name: "recall", Value: res.Metrics.Recall},
			{Name: "f1", Value: res.Metrics.F1},
		})
		if err != nil {
			return err
		}
		results.Figures = append(results.Figures, path)
	}

	path := filepath.Join(t.resultsDir, FileMetrics)
	if err := WriteMetricsCSV(path, res); err != nil {
		return err
	}
	t.logger.Info("metrics saved", zap.String("file", FileMetrics))
	results.Artifacts = append(results.Artifacts, path)
	return nil
}
