package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// #region types

// Sample is one (subject, object) pair belonging to a relation.
type Sample struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
}

// String renders the sample the way it appears in logs.
func (s Sample) String() string {
	return fmt.Sprintf("%s -> %s", s.Subject, s.Object)
}

// Relation is a named relation with prompt templates and known samples.
type Relation struct {
	Name            string   `json:"name"`
	PromptTemplates []string `json:"prompt_templates"`
	Samples         []Sample `json:"samples"`
}

// Dataset is an ordered collection of relations.
type Dataset struct {
	Relations []Relation `json:"relations"`
}

// #endregion types

// #region relation-ops

// Subjects returns the subject strings of all samples, in sample order.
func (r Relation) Subjects() []string {
	out := make([]string, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Subject
	}
	return out
}

// WithSamples returns a copy of the relation restricted to the given samples.
func (r Relation) WithSamples(samples []Sample) Relation {
	r.Samples = samples
	return r
}

// WithPromptTemplate returns a copy of the relation restricted to one template.
func (r Relation) WithPromptTemplate(template string) Relation {
	r.PromptTemplates = []string{template}
	return r
}

// Split partitions the relation's samples into a train relation with exactly
// n samples and a test relation with the remainder. The two partitions never
// overlap. Pass a seeded rng for reproducible draws; nil uses the global
// source.
func (r Relation) Split(n int, rng *rand.Rand) (train, test Relation, err error) {
	if n > len(r.Samples) {
		return Relation{}, Relation{}, fmt.Errorf(
			"split relation %q: want %d train samples, have %d", r.Name, n, len(r.Samples))
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(r.Samples))
	} else {
		perm = rand.Perm(len(r.Samples))
	}

	trainSamples := make([]Sample, 0, n)
	testSamples := make([]Sample, 0, len(r.Samples)-n)
	for i, idx := range perm {
		if i < n {
			trainSamples = append(trainSamples, r.Samples[idx])
		} else {
			testSamples = append(testSamples, r.Samples[idx])
		}
	}
	return r.WithSamples(trainSamples), r.WithSamples(testSamples), nil
}

// #endregion relation-ops

// #region loading

// LoadRelation reads a single relation JSON file.
func LoadRelation(path string) (Relation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Relation{}, fmt.Errorf("read relation %s: %w", path, err)
	}
	var r Relation
	if err := json.Unmarshal(data, &r); err != nil {
		return Relation{}, fmt.Errorf("parse relation %s: %w", path, err)
	}
	if r.Name == "" {
		return Relation{}, fmt.Errorf("relation %s: missing name", path)
	}
	if len(r.PromptTemplates) == 0 {
		return Relation{}, fmt.Errorf("relation %q: no prompt templates", r.Name)
	}
	return r, nil
}

// Load reads every *.json relation file under dir, in sorted filename order.
func Load(dir string) (Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var ds Dataset
	for _, name := range names {
		r, err := LoadRelation(filepath.Join(dir, name))
		if err != nil {
			return Dataset{}, err
		}
		ds.Relations = append(ds.Relations, r)
	}
	return ds, nil
}

// #endregion loading
