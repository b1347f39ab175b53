// Package operator holds the fitted linear relation operator and its
// estimator. An operator approximates a relation's effect on hidden states:
// object logits ~= Weight * h_subject + Bias.
package operator

import (
	"context"
	"fmt"

	"github.com/danmackay/relation-probe/go-sweep/internal/codec"
	"github.com/danmackay/relation-probe/go-sweep/internal/tensor"
)

// #region types

// Prediction is one ranked object-token candidate.
type Prediction struct {
	Token string  `json:"token"`
	Score float32 `json:"score"`
}

// Decoder turns a hidden-space vector into ranked object tokens.
type Decoder interface {
	DecodeTopK(ctx context.Context, vec tensor.Vector, k int) ([]Prediction, error)
}

// Operator is a fitted linear relation operator for one layer. A fitted
// operator is a value: evaluation under different bias scales goes through
// ScaledBias and WithBias, which never touch the fitted bias.
type Operator struct {
	Layer  int
	Weight tensor.Matrix
	Bias   tensor.Vector

	dec Decoder
}

// #endregion types

// #region constructor

// New builds an operator from a fitted weight, bias, and a decoder.
func New(layer int, weight tensor.Matrix, bias tensor.Vector, dec Decoder) *Operator {
	return &Operator{Layer: layer, Weight: weight, Bias: bias, dec: dec}
}

// #endregion constructor

// #region bias

// ScaledBias returns a fresh bias * beta vector. The operator's own bias is
// never aliased, so successive beta evaluations cannot corrupt each other.
func (o *Operator) ScaledBias(beta float32) tensor.Vector {
	return o.Bias.Scale(beta)
}

// WithBias returns a copy of the operator using the given bias.
func (o *Operator) WithBias(bias tensor.Vector) *Operator {
	cp := *o
	cp.Bias = bias
	return &cp
}

// #endregion bias

// #region predict

// Predict maps the subject's hidden state through the operator and decodes
// the k best object tokens.
func (o *Operator) Predict(ctx context.Context, subject string, h tensor.Vector, k int) ([]Prediction, error) {
	z := o.Weight.MatVec(h)
	z.Add(o.Bias)

	preds, err := o.dec.DecodeTopK(ctx, z, k)
	if err != nil {
		return nil, fmt.Errorf("predict %q: %w", subject, err)
	}
	return preds, nil
}

// #endregion predict

// #region codec-decoder

// CodecDecoder adapts the sidecar client to the Decoder interface.
type CodecDecoder struct {
	Client *codec.Client
}

// DecodeTopK decodes through the sidecar's LM head.
func (d CodecDecoder) DecodeTopK(ctx context.Context, vec tensor.Vector, k int) ([]Prediction, error) {
	scored, err := d.Client.DecodeTopK(ctx, vec, k)
	if err != nil {
		return nil, err
	}
	out := make([]Prediction, len(scored))
	for i, s := range scored {
		out[i] = Prediction{Token: s.Token, Score: s.Score}
	}
	return out, nil
}

// #endregion codec-decoder
