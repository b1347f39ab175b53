package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Sidecar.Addr != "localhost:50051" {
		t.Errorf("unexpected sidecar addr %q", cfg.Sidecar.Addr)
	}
	if !cfg.Results.Resume {
		t.Error("resume should default to true")
	}
	if cfg.Sweep.NTrials != 3 || cfg.Sweep.NTrainSamples != 5 || cfg.Sweep.RecallK != 3 {
		t.Errorf("unexpected sweep defaults: %+v", cfg.Sweep)
	}
	if len(cfg.Sweep.HLayers) != 0 || len(cfg.Sweep.Betas) != 0 {
		t.Errorf("layers and betas should default to empty: %+v", cfg.Sweep)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
sidecar:
  addr: "inference:9000"
data:
  dir: /srv/relations
sweep:
  h_layers: [5, 11, 17]
  betas: [0.0, 0.5, 1.0]
  n_trials: 10
  seed: 42
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Sidecar.Addr != "inference:9000" {
		t.Errorf("addr not overridden: %q", cfg.Sidecar.Addr)
	}
	if cfg.Data.Dir != "/srv/relations" {
		t.Errorf("data dir not overridden: %q", cfg.Data.Dir)
	}
	if len(cfg.Sweep.HLayers) != 3 || cfg.Sweep.HLayers[1] != 11 {
		t.Errorf("h_layers not parsed: %v", cfg.Sweep.HLayers)
	}
	if cfg.Sweep.NTrials != 10 || cfg.Sweep.Seed != 42 {
		t.Errorf("sweep knobs not parsed: %+v", cfg.Sweep)
	}
	// Untouched sections keep their defaults.
	if cfg.Sweep.NTrainSamples != 5 || cfg.Results.Dir != "./results" {
		t.Errorf("defaults lost on partial config: %+v", cfg)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if cfg.Sidecar.Addr != "localhost:50051" {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing path: %v", err)
	}
	if cfg.Results.Dir != "./results" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sweep: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOptionsMapping(t *testing.T) {
	cfg := Default()
	cfg.Sweep.HLayers = []int{3}
	cfg.Sweep.Seed = 7
	cfg.Results.Resume = false

	opts := cfg.Options()
	if len(opts.HLayers) != 1 || opts.HLayers[0] != 3 {
		t.Errorf("layers not mapped: %v", opts.HLayers)
	}
	if opts.Seed != 7 || opts.Resume {
		t.Errorf("options not mapped: %+v", opts)
	}
	if opts.NTrials != 3 || opts.BatchSize != 64 {
		t.Errorf("defaults not carried: %+v", opts)
	}
}
