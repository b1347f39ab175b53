package operator

import (
	"context"
	"fmt"

	"github.com/danmackay/relation-probe/go-sweep/internal/codec"
	"github.com/danmackay/relation-probe/go-sweep/internal/dataset"
	"github.com/danmackay/relation-probe/go-sweep/internal/tensor"
)

// #region estimator

// Estimator fits a relation operator from a relation restricted to its
// training samples and a single prompt template.
type Estimator interface {
	Estimate(ctx context.Context, rel dataset.Relation) (*Operator, error)
}

// ICLMeanEstimator fits an operator on the sidecar: the service computes the
// mean Jacobian and bias over the relation's training samples at one layer.
type ICLMeanEstimator struct {
	Client *codec.Client
	Layer  int
}

// Estimate fits the operator for the estimator's layer.
func (e ICLMeanEstimator) Estimate(ctx context.Context, rel dataset.Relation) (*Operator, error) {
	if len(rel.PromptTemplates) != 1 {
		return nil, fmt.Errorf("estimate %q: want exactly 1 prompt template, have %d",
			rel.Name, len(rel.PromptTemplates))
	}
	if len(rel.Samples) == 0 {
		return nil, fmt.Errorf("estimate %q: no training samples", rel.Name)
	}

	subjects := make([]string, len(rel.Samples))
	objects := make([]string, len(rel.Samples))
	for i, s := range rel.Samples {
		subjects[i] = s.Subject
		objects[i] = s.Object
	}

	weight, bias, err := e.Client.EstimateOperator(ctx, e.Layer, rel.PromptTemplates[0], subjects, objects)
	if err != nil {
		return nil, fmt.Errorf("estimate %q layer %d: %w", rel.Name, e.Layer, err)
	}
	if len(bias) == 0 {
		return nil, fmt.Errorf("estimate %q layer %d: sidecar returned no bias", rel.Name, e.Layer)
	}

	return New(e.Layer, tensor.FromRows(weight), tensor.Vector(bias), CodecDecoder{Client: e.Client}), nil
}

// #endregion estimator
