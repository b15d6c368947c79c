package model

import (
	"fmt"
	"sort"
)

// ModelType identifies an estimator family.
type ModelType string

const (
	ModelTypeRandomForest ModelType = "random_forest"
	ModelTypeKMeans       ModelType = "kmeans"
)

// Manager creates estimators through registered factories and keeps the
// instances it created.
type Manager struct {
	factories map[ModelType]Factory
	models    map[string]Estimator
}

// NewManager creates a manager with the built-in factories registered.
func NewManager() *Manager {
	manager := &Manager{
		factories: make(map[ModelType]Factory),
		models:    make(map[string]Estimator),
	}

	manager.RegisterFactory(ModelTypeRandomForest, forestFactory{})
	manager.RegisterFactory(ModelTypeKMeans, kmeansFactory{})

	return manager
}

// RegisterFactory registers a factory, replacing any previous one.
func (m *Manager) RegisterFactory(modelType ModelType, factory Factory) {
	m.factories[modelType] = factory
}

// CreateModel creates and stores an estimator.
func (m *Manager) CreateModel(modelType ModelType, params *Params) (Estimator, error) {
	factory, exists := m.factories[modelType]
	if !exists {
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}

	model, err := factory.Create(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	m.models[modelKey(modelType, params.Name)] = model
	return model, nil
}

// GetModel retrieves a previously created estimator.
func (m *Manager) GetModel(modelType ModelType, name string) (Estimator, bool) {
	model, exists := m.models[modelKey(modelType, name)]
	return model, exists
}

// GetOrCreateModel returns the stored estimator or creates it.
func (m *Manager) GetOrCreateModel(modelType ModelType, params *Params) (Estimator, error) {
	if model, exists := m.GetModel(modelType, params.Name); exists {
		return model, nil
	}
	return m.CreateModel(modelType, params)
}

// ListSupportedModels returns the model names each factory supports.
func (m *Manager) ListSupportedModels() map[ModelType][]string {
	result := make(map[ModelType][]string)
	for modelType, factory := range m.factories {
		result[modelType] = factory.SupportedModels()
	}
	return result
}

// Models returns the keys of the stored estimators, sorted.
func (m *Manager) Models() []string {
	keys := make([]string, 0, len(m.models))
	for k := range m.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func modelKey(modelType ModelType, name string) string {
	return fmt.Sprintf("%s:%s", modelType, name)
}

type forestFactory struct{}

func (forestFactory) Create(params *Params) (Estimator, error) {
	if params.NEstimators < 1 {
		return nil, fmt.Errorf("n_estimators must be positive, got %d", params.NEstimators)
	}
	if params.MinSamplesLeaf < 1 || params.MinSamplesSplit < 2 {
		return nil, fmt.Errorf("invalid leaf/split sizes %d/%d", params.MinSamplesLeaf, params.MinSamplesSplit)
	}
	return NewRandomForest(*params), nil
}

func (forestFactory) SupportedModels() []string {
	return []string{"random_forest_classifier"}
}

type kmeansFactory struct{}

func (kmeansFactory) Create(params *Params) (Estimator, error) {
	if params.Clusters < 1 {
		return nil, fmt.Errorf("n_clusters must be positive, got %d", params.Clusters)
	}
	if params.NInit < 1 || params.MaxIter < 1 {
		return nil, fmt.Errorf("n_init and max_iter must be positive")
	}
	return NewKMeans(*params), nil
}

func (kmeansFactory) SupportedModels() []string {
	return []string{"kmeans_plus_plus"}
}
