package operator

import (
	"context"
	"errors"
	"testing"

	"github.com/danmackay/relation-probe/go-sweep/internal/tensor"
)

// #region stub-decoder

type stubDecoder struct {
	lastVec tensor.Vector
	lastK   int
	preds   []Prediction
	err     error
}

func (d *stubDecoder) DecodeTopK(_ context.Context, vec tensor.Vector, k int) ([]Prediction, error) {
	d.lastVec = vec.Clone()
	d.lastK = k
	return d.preds, d.err
}

// #endregion stub-decoder

func testOperator(dec Decoder) *Operator {
	w := tensor.FromRows([][]float32{
		{1, 0},
		{0, 2},
	})
	return New(5, w, tensor.Vector{10, 20}, dec)
}

func TestPredictAppliesAffineMap(t *testing.T) {
	dec := &stubDecoder{preds: []Prediction{{Token: "Paris", Score: 1}}}
	op := testOperator(dec)

	preds, err := op.Predict(context.Background(), "France", tensor.Vector{1, 2}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preds) != 1 || preds[0].Token != "Paris" {
		t.Fatalf("unexpected predictions: %v", preds)
	}

	// z = W*h + bias = [1, 4] + [10, 20]
	if !dec.lastVec.Equal(tensor.Vector{11, 24}) {
		t.Errorf("decoder received %v, want [11 24]", dec.lastVec)
	}
	if dec.lastK != 3 {
		t.Errorf("decoder received k=%d, want 3", dec.lastK)
	}
}

func TestPredictWrapsDecoderError(t *testing.T) {
	dec := &stubDecoder{err: errors.New("decode failed")}
	op := testOperator(dec)

	_, err := op.Predict(context.Background(), "France", tensor.Vector{1, 2}, 1)
	if !errors.Is(err, dec.err) {
		t.Fatalf("expected wrapped decoder error, got: %v", err)
	}
}

func TestScaledBiasIsPure(t *testing.T) {
	op := testOperator(&stubDecoder{})

	half := op.ScaledBias(0.5)
	zero := op.ScaledBias(0)

	if !half.Equal(tensor.Vector{5, 10}) {
		t.Errorf("unexpected scaled bias: %v", half)
	}
	if !zero.Equal(tensor.Vector{0, 0}) {
		t.Errorf("unexpected zero bias: %v", zero)
	}
	if !op.Bias.Equal(tensor.Vector{10, 20}) {
		t.Fatalf("fitted bias mutated: %v", op.Bias)
	}

	// Mutating a scaled bias must not reach the fitted operator.
	half[0] = 99
	if op.Bias[0] != 10 {
		t.Fatal("scaled bias aliases the fitted bias")
	}
}

func TestWithBiasLeavesOriginal(t *testing.T) {
	op := testOperator(&stubDecoder{})
	scaled := op.WithBias(op.ScaledBias(0.25))

	if !scaled.Bias.Equal(tensor.Vector{2.5, 5}) {
		t.Errorf("unexpected bias on copy: %v", scaled.Bias)
	}
	if !op.Bias.Equal(tensor.Vector{10, 20}) {
		t.Errorf("original bias changed: %v", op.Bias)
	}
	if scaled.Layer != op.Layer {
		t.Errorf("layer not carried over: %d", scaled.Layer)
	}
}
