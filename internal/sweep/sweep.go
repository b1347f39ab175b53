// Package sweep drives the relation-operator faithfulness experiment: for
// every relation it repeatedly splits samples into train and test, fits an
// operator per candidate layer from precomputed activations, and scores
// prediction recall across a grid of bias attenuation factors (betas).
package sweep

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/danmackay/relation-probe/go-sweep/internal/codec"
	"github.com/danmackay/relation-probe/go-sweep/internal/dataset"
	"github.com/danmackay/relation-probe/go-sweep/internal/metrics"
	"github.com/danmackay/relation-probe/go-sweep/internal/operator"
	"github.com/danmackay/relation-probe/go-sweep/internal/tensor"
)

// #region defaults

const (
	DefaultRecallK       = 3
	DefaultNTrials       = 3
	DefaultNTrainSamples = 5
	DefaultBatchSize     = 64

	defaultBetaSteps = 21
)

// #endregion defaults

// #region options

// CheckpointStore persists per-relation results between runs. Load reports
// whether a result exists for the name.
type CheckpointStore interface {
	Load(name string) (*RelationResult, bool, error)
	Save(name string, res *RelationResult) error
}

// Options configures one sweep run. Zero fields take defaults; HLayers
// defaults to every transformer layer of the sidecar model and Betas to 21
// evenly spaced values in [0, 1].
type Options struct {
	HLayers       []int
	Betas         []float64
	NTrials       int
	NTrainSamples int
	RecallK       int
	BatchSize     int
	Resume        bool
	Seed          int64

	// NewEstimator builds the per-layer estimator. Defaults to the
	// sidecar-backed ICL mean estimator.
	NewEstimator func(layer int) operator.Estimator
}

func (o Options) withDefaults(ctx context.Context, client *codec.Client) (Options, error) {
	if o.NTrials == 0 {
		o.NTrials = DefaultNTrials
	}
	if o.NTrainSamples == 0 {
		o.NTrainSamples = DefaultNTrainSamples
	}
	if o.RecallK == 0 {
		o.RecallK = DefaultRecallK
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if len(o.Betas) == 0 {
		o.Betas = linspace(0, 1, defaultBetaSteps)
	}
	if len(o.HLayers) == 0 {
		info, err := client.ModelInfo(ctx)
		if err != nil {
			return o, fmt.Errorf("determine layers: %w", err)
		}
		o.HLayers = make([]int, info.NumLayers)
		for i := range o.HLayers {
			o.HLayers[i] = i
		}
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.NewEstimator == nil {
		o.NewEstimator = func(layer int) operator.Estimator {
			return operator.ICLMeanEstimator{Client: client, Layer: layer}
		}
	}
	return o, nil
}

func linspace(lo, hi float64, steps int) []float64 {
	out := make([]float64, steps)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(steps-1)
	}
	return out
}

// #endregion options

// #region run

// Run sweeps every relation in the dataset, in dataset order. With
// opts.Resume and a non-nil store, relations with persisted results are
// loaded verbatim and skipped; every freshly computed relation result is
// persisted before the next relation starts. Any estimator, inference, span
// lookup, or store failure aborts the sweep.
func Run(ctx context.Context, client *codec.Client, store CheckpointStore, ds dataset.Dataset, opts Options) (*Result, error) {
	opts, err := opts.withDefaults(ctx, client)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	log.Printf("[SWEEP] begin sweeping faithfulness over %d relations", len(ds.Relations))
	res := &Result{RunID: uuid.New().String()}

	for ri, relation := range ds.Relations {
		log.Printf("[SWEEP] begin relation %q (%d/%d)", relation.Name, ri+1, len(ds.Relations))

		if opts.Resume && store != nil {
			prev, ok, err := store.Load(relation.Name)
			if err != nil {
				return nil, fmt.Errorf("load checkpoint for %q: %w", relation.Name, err)
			}
			if ok {
				log.Printf("[SWEEP] loaded previous results for %q", relation.Name)
				res.Relations = append(res.Relations, *prev)
				continue
			}
		}

		relRes, err := runRelation(ctx, client, relation, opts, rng)
		if err != nil {
			return nil, err
		}
		relRes.Summarize(opts.RecallK)

		if store != nil {
			if err := store.Save(relation.Name, relRes); err != nil {
				return nil, fmt.Errorf("save checkpoint for %q: %w", relation.Name, err)
			}
		}
		res.Relations = append(res.Relations, *relRes)
	}
	return res, nil
}

// #endregion run

// #region relation-loop

func runRelation(ctx context.Context, client *codec.Client, relation dataset.Relation, opts Options, rng *rand.Rand) (*RelationResult, error) {
	if len(relation.PromptTemplates) == 0 {
		return nil, fmt.Errorf("relation %q has no prompt templates", relation.Name)
	}
	template := relation.PromptTemplates[0]

	var trials []TrialResult
	for trial := 0; trial < opts.NTrials; trial++ {
		log.Printf("[SWEEP] begin trial %d/%d", trial+1, opts.NTrials)

		if len(relation.Samples) <= opts.NTrainSamples {
			log.Printf("[SWEEP] warning: not enough samples (%d) to test %q with n_train_samples=%d; skipping trial",
				len(relation.Samples), relation.Name, opts.NTrainSamples)
			continue
		}

		trainRel, testRel, err := relation.Split(opts.NTrainSamples, rng)
		if err != nil {
			return nil, err
		}
		trainSamples := trainRel.Samples
		// Demonstrations use one fewer sample than the estimator trains on.
		iclExamples := trainSamples[:len(trainSamples)-1]

		log.Printf("[SWEEP] will train using: %v", sampleStrings(trainSamples))
		log.Printf("[SWEEP] will do icl for testing using: %v", sampleStrings(iclExamples))

		cache, err := precomputeHS(ctx, client, template, relation.Subjects(), iclExamples, opts.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("precompute activations for %q: %w", relation.Name, err)
		}

		var layerResults []LayerResult
		for _, layer := range opts.HLayers {
			log.Printf("[SWEEP] begin layer %d", layer)

			fitted, err := opts.NewEstimator(layer).Estimate(ctx,
				relation.WithSamples(trainSamples).WithPromptTemplate(template))
			if err != nil {
				return nil, err
			}

			betaResults, err := runBetaGrid(ctx, fitted, testRel.Samples, cache, opts.Betas, opts.RecallK)
			if err != nil {
				return nil, err
			}

			trainRes := TrainResult{Samples: trainSamples, Betas: betaResults}
			trainRes.Summarize()
			layerResults = append(layerResults, LayerResult{Layer: layer, Result: trainRes})
		}

		trials = append(trials, TrialResult{
			PromptTemplate: template,
			TrainSamples:   trainSamples,
			Layers:         layerResults,
		})
	}

	return &RelationResult{RelationName: relation.Name, Trials: trials}, nil
}

func sampleStrings(samples []dataset.Sample) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = s.String()
	}
	return out
}

// #endregion relation-loop

// #region beta-grid

// runBetaGrid scores the fitted operator over the beta grid against the test
// split. Each beta gets a fresh bias scaled from the untouched fitted bias;
// output order matches grid order.
func runBetaGrid(ctx context.Context, fitted *operator.Operator, testSamples []dataset.Sample, cache map[string]tensor.Matrix, betas []float64, recallK int) ([]BetaResult, error) {
	objects := make([]string, len(testSamples))
	for i, s := range testSamples {
		objects[i] = s.Object
	}

	out := make([]BetaResult, 0, len(betas))
	for _, beta := range betas {
		op := fitted.WithBias(fitted.ScaledBias(float32(beta)))

		predLists := make([][]string, 0, len(testSamples))
		for _, s := range testSamples {
			hs, ok := cache[s.Subject]
			if !ok {
				return nil, fmt.Errorf("no cached activations for subject %q", s.Subject)
			}
			preds, err := op.Predict(ctx, s.Subject, hs.Row(fitted.Layer), recallK)
			if err != nil {
				return nil, err
			}
			toks := make([]string, len(preds))
			for i, p := range preds {
				toks[i] = p.Token
			}
			predLists = append(predLists, toks)
		}

		out = append(out, BetaResult{Beta: beta, Recall: metrics.Recall(predLists, objects)})
	}
	return out, nil
}

// #endregion beta-grid
