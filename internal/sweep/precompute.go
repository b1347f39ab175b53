package sweep

import (
	"context"
	"fmt"

	"github.com/danmackay/relation-probe/go-sweep/internal/codec"
	"github.com/danmackay/relation-probe/go-sweep/internal/dataset"
	"github.com/danmackay/relation-probe/go-sweep/internal/prompt"
	"github.com/danmackay/relation-probe/go-sweep/internal/tensor"
	"github.com/danmackay/relation-probe/go-sweep/internal/tokens"
)

// #region precompute

// precomputeHS builds the per-trial activation cache: for every subject, the
// hidden state of each transformer layer at the subject's final token in its
// rendered prompt. Tokenization happens once over all prompts so padding is
// shared; inference runs in fixed-size batches, which must not change the
// numbers versus batch size 1.
func precomputeHS(ctx context.Context, client *codec.Client, template string, subjects []string, examples []dataset.Sample, batchSize int) (map[string]tensor.Matrix, error) {
	prompts := make([]string, len(subjects))
	for i, s := range subjects {
		prompts[i] = prompt.RenderWithExamples(template, s, examples)
	}

	toks, err := client.Tokenize(ctx, prompts)
	if err != nil {
		return nil, err
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	hidden := make([][][][]float32, 0, len(toks))
	for i := 0; i < len(toks); i += batchSize {
		end := min(i+batchSize, len(toks))
		ids := make([][]int64, 0, end-i)
		mask := make([][]int32, 0, end-i)
		for _, tp := range toks[i:end] {
			ids = append(ids, tp.IDs)
			mask = append(mask, tp.Mask)
		}
		batch, err := client.Forward(ctx, ids, mask)
		if err != nil {
			return nil, err
		}
		hidden = append(hidden, batch...)
	}

	out := make(map[string]tensor.Matrix, len(subjects))
	for i, subj := range subjects {
		_, end, err := tokens.FindTokenRange(prompts[i], subj, toks[i].Offsets)
		if err != nil {
			return nil, fmt.Errorf("locate subject %q: %w", subj, err)
		}
		// end is exclusive; the subject's final token sits just before it.
		hIdx := end - 1

		layers := hidden[i]
		if len(layers) == 0 {
			return nil, fmt.Errorf("no hidden states for subject %q", subj)
		}
		for l, states := range layers {
			if hIdx < 0 || hIdx >= len(states) {
				return nil, fmt.Errorf("hidden states for subject %q layer %d end at position %d, need %d",
					subj, l, len(states)-1, hIdx)
			}
		}
		m := tensor.NewMatrix(len(layers), len(layers[0][hIdx]))
		for l, states := range layers {
			m.SetRow(l, tensor.Vector(states[hIdx]))
		}
		out[subj] = m
	}
	return out, nil
}

// #endregion precompute
