// Package metrics implements prediction recall and scalar aggregation for
// sweep results.
package metrics

import (
	"fmt"
	"math"
	"strings"
)

// #region recall

// Recall compares ranked prediction lists against true objects and returns
// recall@i for i = 1..w, where w is the widest prediction list. A prediction
// matches when, after lowercasing and trimming, one string is a non-empty
// prefix of the other; this tolerates tokenizer fragments like "Pari" for
// "Paris".
func Recall(predictions [][]string, targets []string) []float64 {
	if len(predictions) == 0 {
		return nil
	}

	width := 0
	for _, preds := range predictions {
		if len(preds) > width {
			width = len(preds)
		}
	}
	if width == 0 {
		return nil
	}

	hitsAtRank := make([]int, width)
	for i, preds := range predictions {
		for rank, p := range preds {
			if matchesTarget(p, targets[i]) {
				hitsAtRank[rank]++
				break
			}
		}
	}

	recall := make([]float64, width)
	running := 0
	for i := range recall {
		running += hitsAtRank[i]
		recall[i] = float64(running) / float64(len(predictions))
	}
	return recall
}

func matchesTarget(prediction, target string) bool {
	p := strings.ToLower(strings.TrimSpace(prediction))
	t := strings.ToLower(strings.TrimSpace(target))
	if p == "" || t == "" {
		return false
	}
	return strings.HasPrefix(t, p) || strings.HasPrefix(p, t)
}

// #endregion recall

// #region aggregate

// AggregateMetric summarizes a list of scalar observations.
type AggregateMetric struct {
	Mean   float64   `json:"mean"`
	Stdev  float64   `json:"stdev"`
	Stderr float64   `json:"stderr"`
	Values []float64 `json:"values"`
}

// Aggregate computes mean, population standard deviation, and standard error
// over the values. An empty input yields a zero metric.
func Aggregate(values []float64) AggregateMetric {
	if len(values) == 0 {
		return AggregateMetric{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	stdev := math.Sqrt(sq / float64(len(values)))

	return AggregateMetric{
		Mean:   mean,
		Stdev:  stdev,
		Stderr: stdev / math.Sqrt(float64(len(values))),
		Values: append([]float64(nil), values...),
	}
}

// String renders the metric the way it appears in summaries.
func (m AggregateMetric) String() string {
	return fmt.Sprintf("%.2f ± %.2f", m.Mean, m.Stdev)
}

// #endregion aggregate
