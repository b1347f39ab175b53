package sweep

import (
	"fmt"
	"log"
	"sort"

	"github.com/danmackay/relation-probe/go-sweep/internal/dataset"
	"github.com/danmackay/relation-probe/go-sweep/internal/metrics"
)

// #region beta-result

// BetaResult is the recall curve for one (layer, train draw, beta)
// combination. Recall[i] is recall@(i+1).
type BetaResult struct {
	Beta   float64   `json:"beta"`
	Recall []float64 `json:"recall"`
}

func (b BetaResult) recallAt(k int) float64 {
	if k < 1 || k > len(b.Recall) {
		return 0
	}
	return b.Recall[k-1]
}

// #endregion beta-result

// #region train-result

// TrainResult is one training-sample draw with its full beta grid.
type TrainResult struct {
	Samples []dataset.Sample `json:"samples"`
	Betas   []BetaResult     `json:"betas"`
}

// Best returns the beta with maximal recall@k. Ties go to the earliest beta
// in grid order.
func (r TrainResult) Best(k int) BetaResult {
	var best BetaResult
	for i, b := range r.Betas {
		if i == 0 || b.recallAt(k) > best.recallAt(k) {
			best = b
		}
	}
	return best
}

// Summarize logs the best grid point for this draw.
func (r TrainResult) Summarize() {
	best := r.Best(1)
	samples := make([]string, len(r.Samples))
	for i, s := range r.Samples {
		samples[i] = s.String()
	}
	log.Printf("[SWEEP] beta=%.2f | recall@1=%.2f | samples=%v",
		best.Beta, best.recallAt(1), samples)
}

// #endregion train-result

// #region layer-trial

// LayerResult pairs one candidate layer with its train result.
type LayerResult struct {
	Layer  int         `json:"layer"`
	Result TrainResult `json:"result"`
}

// TrialResult is one independent train/test draw evaluated over all layers.
type TrialResult struct {
	PromptTemplate string           `json:"prompt_template"`
	TrainSamples   []dataset.Sample `json:"train_samples"`
	Layers         []LayerResult    `json:"layers"`
}

// #endregion layer-trial

// #region relation-result

// LayerSummary aggregates best-beta and best-recall for one layer across
// trials.
type LayerSummary struct {
	Layer  int                     `json:"layer"`
	Beta   metrics.AggregateMetric `json:"beta"`
	Recall metrics.AggregateMetric `json:"recall"`
}

// RelationResult is the sweep outcome for one relation. Once persisted it is
// immutable; resume loads it verbatim.
type RelationResult struct {
	RelationName string        `json:"relation_name"`
	Trials       []TrialResult `json:"trials"`
}

// ByLayer groups each trial's best grid point by layer and aggregates beta
// and recall@k across trials.
func (r RelationResult) ByLayer(k int) map[int]LayerSummary {
	betasByLayer := make(map[int][]float64)
	recallsByLayer := make(map[int][]float64)
	for _, trial := range r.Trials {
		for _, layer := range trial.Layers {
			best := layer.Result.Best(k)
			betasByLayer[layer.Layer] = append(betasByLayer[layer.Layer], best.Beta)
			recallsByLayer[layer.Layer] = append(recallsByLayer[layer.Layer], best.recallAt(k))
		}
	}

	out := make(map[int]LayerSummary, len(recallsByLayer))
	for layer := range recallsByLayer {
		out[layer] = LayerSummary{
			Layer:  layer,
			Beta:   metrics.Aggregate(betasByLayer[layer]),
			Recall: metrics.Aggregate(recallsByLayer[layer]),
		}
	}
	return out
}

// Best returns the layer with maximal mean recall@k across trials. Ties go
// to the lowest layer.
func (r RelationResult) Best(k int) (LayerSummary, error) {
	byLayer := r.ByLayer(k)
	if len(byLayer) == 0 {
		return LayerSummary{}, fmt.Errorf("relation %q has no layer results", r.RelationName)
	}

	layers := make([]int, 0, len(byLayer))
	for layer := range byLayer {
		layers = append(layers, layer)
	}
	sort.Ints(layers)

	best := byLayer[layers[0]]
	for _, layer := range layers[1:] {
		if byLayer[layer].Recall.Mean > best.Recall.Mean {
			best = byLayer[layer]
		}
	}
	return best, nil
}

// Summarize logs the per-layer aggregates for this relation.
func (r RelationResult) Summarize(k int) {
	byLayer := r.ByLayer(k)
	layers := make([]int, 0, len(byLayer))
	for layer := range byLayer {
		layers = append(layers, layer)
	}
	sort.Ints(layers)

	log.Printf("[SWEEP] summarizing results for %q", r.RelationName)
	for _, layer := range layers {
		summ := byLayer[layer]
		log.Printf("[SWEEP] layer=%d | beta=%s | recall@%d=%s", layer, summ.Beta, k, summ.Recall)
	}
}

// #endregion relation-result

// #region sweep-result

// Result is the full sweep output across all relations.
type Result struct {
	RunID     string           `json:"run_id"`
	Relations []RelationResult `json:"relations"`
}

// #endregion sweep-result
