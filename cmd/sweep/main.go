package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/danmackay/relation-probe/go-sweep/internal/codec"
	"github.com/danmackay/relation-probe/go-sweep/internal/config"
	"github.com/danmackay/relation-probe/go-sweep/internal/dataset"
	"github.com/danmackay/relation-probe/go-sweep/internal/results"
	"github.com/danmackay/relation-probe/go-sweep/internal/sweep"
)

// #region main

func main() {
	configPath := flag.String("config", envOr("SWEEP_CONFIG", ""), "path to config.yaml")
	dataDir := flag.String("data", "", "relation dataset directory (overrides config)")
	resultsDir := flag.String("results", "", "results directory (overrides config)")
	addr := flag.String("addr", envOr("SIDECAR_ADDR", ""), "inference sidecar address (overrides config)")
	resume := flag.Bool("resume", true, "reuse persisted relation results")
	seed := flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *resultsDir != "" {
		cfg.Results.Dir = *resultsDir
	}
	if *addr != "" {
		cfg.Sidecar.Addr = *addr
	}
	cfg.Results.Resume = *resume
	if *seed != 0 {
		cfg.Sweep.Seed = *seed
	}

	ds, err := dataset.Load(cfg.Data.Dir)
	if err != nil {
		log.Fatalf("failed to load dataset from %s: %v", cfg.Data.Dir, err)
	}
	if len(ds.Relations) == 0 {
		log.Fatalf("no relations found in %s", cfg.Data.Dir)
	}

	if err := os.MkdirAll(cfg.Results.Dir, 0o755); err != nil {
		log.Fatalf("failed to create results dir: %v", err)
	}
	store, err := results.Open(cfg.Results.Dir)
	if err != nil {
		log.Fatalf("failed to open results store: %v", err)
	}
	defer store.Close()

	client, err := codec.NewClient(cfg.Sidecar.Addr)
	if err != nil {
		log.Fatalf("failed to connect to sidecar at %s: %v", cfg.Sidecar.Addr, err)
	}
	defer client.Close()

	opts := cfg.Options()
	res, err := sweep.Run(context.Background(), client, store, ds, opts)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	cfgJSON, _ := json.Marshal(cfg)
	if err := store.RecordRun(res.RunID, string(cfgJSON)); err != nil {
		log.Printf("[SWEEP] warning: could not record run: %v", err)
	}

	exportPath := filepath.Join(cfg.Results.Dir, "sweep.json")
	if err := exportJSON(exportPath, res); err != nil {
		log.Fatalf("failed to export results: %v", err)
	}

	recallK := opts.RecallK
	if recallK == 0 {
		recallK = sweep.DefaultRecallK
	}
	fmt.Printf("Sweep %s complete: %d relations -> %s\n", res.RunID, len(res.Relations), exportPath)
	for _, rel := range res.Relations {
		best, err := rel.Best(recallK)
		if err != nil {
			fmt.Printf("  %-30s (no results)\n", rel.RelationName)
			continue
		}
		fmt.Printf("  %-30s layer=%d beta=%s recall@%d=%s\n",
			rel.RelationName, best.Layer, best.Beta, recallK, best.Recall)
	}
}

// #endregion main

// #region helpers

func exportJSON(path string, res *sweep.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
