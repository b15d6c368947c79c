// Package preprocess cleans the raw catalog and derives the engineered
// features consumed by the analysis, charting and modeling stages.
//
// The work is organised as an ordered list of named steps. Each step takes
// the dataset and returns it, so steps can be exercised on their own in
// tests and composed into a Pipeline for a full run.
package preprocess

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cine-insights/catalog"
)

// StepFunc transforms the dataset. Implementations may mutate ds in place
// and return it.
type StepFunc func(ctx context.Context, ds *catalog.Dataset) (*catalog.Dataset, error)

// Step is a named transform.
type Step struct {
	Name string
	Fn   StepFunc
}

// Pipeline runs steps in the order they were added.
type Pipeline struct {
	steps  []Step
	logger *zap.Logger
}

// NewPipeline creates an empty pipeline.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{logger: logger}
}

// AddStep appends a named step.
func (p *Pipeline) AddStep(name string, fn StepFunc) *Pipeline {
	p.steps = append(p.steps, Step{Name: name, Fn: fn})
	return p
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// Run applies every step in sequence and stops at the first error.
func (p *Pipeline) Run(ctx context.Context, ds *catalog.Dataset) (*catalog.Dataset, error) {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return ds, fmt.Errorf("step %q: %w", step.Name, err)
		}

		start := time.Now()
		out, err := step.Fn(ctx, ds)
		if err != nil {
			return ds, fmt.Errorf("step %q: %w", step.Name, err)
		}
		ds = out

		rows, cols := ds.Shape()
		p.logger.Debug("step completed",
			zap.String("step", step.Name),
			zap.Int("rows", rows),
			zap.Int("columns", cols),
			zap.Duration("elapsed", time.Since(start)))
	}
	return ds, nil
}
