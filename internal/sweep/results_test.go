package sweep

import (
	"math"
	"testing"
)

func betaPoint(beta float64, recall ...float64) BetaResult {
	return BetaResult{Beta: beta, Recall: recall}
}

func TestTrainResultBest(t *testing.T) {
	r := TrainResult{Betas: []BetaResult{
		betaPoint(0.0, 0.1, 0.2),
		betaPoint(0.5, 0.6, 0.7),
		betaPoint(1.0, 0.4, 0.9),
	}}

	if got := r.Best(1); got.Beta != 0.5 {
		t.Errorf("best beta for recall@1 = %f, want 0.5", got.Beta)
	}
	if got := r.Best(2); got.Beta != 1.0 {
		t.Errorf("best beta for recall@2 = %f, want 1.0", got.Beta)
	}
}

func TestTrainResultBestTieKeepsGridOrder(t *testing.T) {
	r := TrainResult{Betas: []BetaResult{
		betaPoint(0.0, 0.5),
		betaPoint(0.5, 0.5),
		betaPoint(1.0, 0.5),
	}}
	if got := r.Best(1); got.Beta != 0.0 {
		t.Errorf("tie should keep the earliest beta, got %f", got.Beta)
	}
}

func TestBetaResultRecallAtBounds(t *testing.T) {
	b := betaPoint(0.5, 0.3, 0.6)
	if got := b.recallAt(2); got != 0.6 {
		t.Errorf("recall@2 = %f, want 0.6", got)
	}
	if got := b.recallAt(0); got != 0 {
		t.Errorf("recall@0 should be 0, got %f", got)
	}
	if got := b.recallAt(3); got != 0 {
		t.Errorf("recall beyond the curve should be 0, got %f", got)
	}
}

func twoTrialRelation() RelationResult {
	// Layer 2 is best at recall@1 in both trials; best betas are 0.5 and 1.0.
	return RelationResult{
		RelationName: "capital city",
		Trials: []TrialResult{
			{Layers: []LayerResult{
				{Layer: 2, Result: TrainResult{Betas: []BetaResult{
					betaPoint(0.0, 0.2), betaPoint(0.5, 0.8),
				}}},
				{Layer: 7, Result: TrainResult{Betas: []BetaResult{
					betaPoint(0.0, 0.1), betaPoint(0.5, 0.4),
				}}},
			}},
			{Layers: []LayerResult{
				{Layer: 2, Result: TrainResult{Betas: []BetaResult{
					betaPoint(0.5, 0.3), betaPoint(1.0, 0.6),
				}}},
				{Layer: 7, Result: TrainResult{Betas: []BetaResult{
					betaPoint(0.5, 0.5), betaPoint(1.0, 0.2),
				}}},
			}},
		},
	}
}

func TestRelationResultByLayer(t *testing.T) {
	byLayer := twoTrialRelation().ByLayer(1)

	if len(byLayer) != 2 {
		t.Fatalf("expected summaries for 2 layers, got %d", len(byLayer))
	}

	l2 := byLayer[2]
	if math.Abs(l2.Recall.Mean-0.7) > 1e-9 {
		t.Errorf("layer 2 mean recall = %f, want 0.7", l2.Recall.Mean)
	}
	if math.Abs(l2.Beta.Mean-0.75) > 1e-9 {
		t.Errorf("layer 2 mean best beta = %f, want 0.75", l2.Beta.Mean)
	}

	l7 := byLayer[7]
	if math.Abs(l7.Recall.Mean-0.45) > 1e-9 {
		t.Errorf("layer 7 mean recall = %f, want 0.45", l7.Recall.Mean)
	}
}

func TestRelationResultBest(t *testing.T) {
	best, err := twoTrialRelation().Best(1)
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best.Layer != 2 {
		t.Errorf("best layer = %d, want 2", best.Layer)
	}
}

func TestRelationResultBestTieGoesToLowestLayer(t *testing.T) {
	r := RelationResult{
		RelationName: "tied",
		Trials: []TrialResult{{Layers: []LayerResult{
			{Layer: 9, Result: TrainResult{Betas: []BetaResult{betaPoint(0.5, 0.5)}}},
			{Layer: 4, Result: TrainResult{Betas: []BetaResult{betaPoint(0.5, 0.5)}}},
		}}},
	}
	best, err := r.Best(1)
	if err != nil {
		t.Fatal(err)
	}
	if best.Layer != 4 {
		t.Errorf("tie should go to the lowest layer, got %d", best.Layer)
	}
}

func TestRelationResultBestEmpty(t *testing.T) {
	r := RelationResult{RelationName: "empty"}
	if _, err := r.Best(1); err == nil {
		t.Fatal("expected error for a relation with no layer results")
	}
}
