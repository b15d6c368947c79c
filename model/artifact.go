package model

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Artifact file names written to the results directory.
const (
	FileChurnModel        = "churn_model.json"
	FileSegmentationModel = "segmentation_model.json"
	FileMetrics           = "model_metrics.csv"
)

// ChurnArtifact is the persisted churn classifier.
type ChurnArtifact struct {
	Model    ModelType       `json:"model"`
	Features []string        `json:"features"`
	Scaler   *StandardScaler `json:"scaler"`
	Forest   *RandomForest   `json:"forest"`
	Metrics  Metrics         `json:"metrics"`
}

// SegmentationArtifact is the persisted clustering.
type SegmentationArtifact struct {
	Model    ModelType       `json:"model"`
	Features []string        `json:"features"`
	Scaler   *StandardScaler `json:"scaler"`
	KMeans   *KMeans         `json:"kmeans"`
	Sizes    []int           `json:"cluster_sizes"`
}

// SaveJSON writes v as compact JSON, creating parent directories.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadChurnModel reads a churn artifact written by SaveJSON.
func LoadChurnModel(path string) (*ChurnArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var a ChurnArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if a.Forest == nil || a.Scaler == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFitted)
	}
	return &a, nil
}

// WriteMetricsCSV writes one row of classifier scores followed by the
// feature importances.
func WriteMetricsCSV(path string, res *ChurnResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	header := []string{"model", "accuracy", "precision", "recall", "f1"}
	row := []string{
		res.Name,
		formatScore(res.Metrics.Accuracy),
		formatScore(res.Metrics.Precision),
		formatScore(res.Metrics.Recall),
		formatScore(res.Metrics.F1),
	}
	for _, fi := range res.Importances {
		header = append(header, "importance_"+fi.Feature)
		row = append(row, formatScore(fi.Importance))
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll([][]string{header, row}); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
