// Package config handles sweep configuration loading.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danmackay/relation-probe/go-sweep/internal/sweep"
)

// Config is the root configuration structure.
type Config struct {
	Sidecar SidecarConfig `yaml:"sidecar"`
	Data    DataConfig    `yaml:"data"`
	Results ResultsConfig `yaml:"results"`
	Sweep   SweepConfig   `yaml:"sweep"`
}

// SidecarConfig holds the inference sidecar connection settings.
type SidecarConfig struct {
	Addr string `yaml:"addr"`
}

// DataConfig points at the relation dataset.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// ResultsConfig holds persistence settings.
type ResultsConfig struct {
	Dir    string `yaml:"dir"`
	Resume bool   `yaml:"resume"`
}

// SweepConfig holds the experiment knobs. Zero values defer to the sweep
// package defaults; an empty HLayers means every transformer layer and an
// empty Betas means 21 evenly spaced values in [0, 1].
type SweepConfig struct {
	HLayers       []int     `yaml:"h_layers"`
	Betas         []float64 `yaml:"betas"`
	NTrials       int       `yaml:"n_trials"`
	NTrainSamples int       `yaml:"n_train_samples"`
	RecallK       int       `yaml:"recall_k"`
	BatchSize     int       `yaml:"batch_size"`
	Seed          int64     `yaml:"seed"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sidecar: SidecarConfig{
			Addr: "localhost:50051",
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Results: ResultsConfig{
			Dir:    "./results",
			Resume: true,
		},
		Sweep: SweepConfig{
			NTrials:       sweep.DefaultNTrials,
			NTrainSamples: sweep.DefaultNTrainSamples,
			RecallK:       sweep.DefaultRecallK,
			BatchSize:     sweep.DefaultBatchSize,
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the defaults when the path
// is empty or absent.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Options maps the sweep section onto sweep run options.
func (c *Config) Options() sweep.Options {
	return sweep.Options{
		HLayers:       c.Sweep.HLayers,
		Betas:         c.Sweep.Betas,
		NTrials:       c.Sweep.NTrials,
		NTrainSamples: c.Sweep.NTrainSamples,
		RecallK:       c.Sweep.RecallK,
		BatchSize:     c.Sweep.BatchSize,
		Resume:        c.Results.Resume,
		Seed:          c.Sweep.Seed,
	}
}
