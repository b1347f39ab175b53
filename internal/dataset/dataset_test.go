package dataset

import (
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func capitalRelation() Relation {
	return Relation{
		Name:            "capital of",
		PromptTemplates: []string{"The capital of {} is"},
		Samples: []Sample{
			{Subject: "France", Object: "Paris"},
			{Subject: "Italy", Object: "Rome"},
			{Subject: "Japan", Object: "Tokyo"},
			{Subject: "Peru", Object: "Lima"},
			{Subject: "Kenya", Object: "Nairobi"},
			{Subject: "Norway", Object: "Oslo"},
			{Subject: "Chile", Object: "Santiago"},
			{Subject: "Egypt", Object: "Cairo"},
		},
	}
}

func TestSplitSizesAndDisjointness(t *testing.T) {
	r := capitalRelation()
	rng := rand.New(rand.NewSource(7))

	for n := 0; n <= len(r.Samples); n++ {
		train, test, err := r.Split(n, rng)
		if err != nil {
			t.Fatalf("split(%d): %v", n, err)
		}
		if len(train.Samples) != n {
			t.Fatalf("split(%d): train has %d samples", n, len(train.Samples))
		}
		if len(test.Samples) != len(r.Samples)-n {
			t.Fatalf("split(%d): test has %d samples", n, len(test.Samples))
		}

		seen := make(map[string]bool)
		for _, s := range train.Samples {
			seen[s.Subject] = true
		}
		for _, s := range test.Samples {
			if seen[s.Subject] {
				t.Fatalf("split(%d): subject %q in both partitions", n, s.Subject)
			}
		}
	}
}

func TestSplitTooManySamples(t *testing.T) {
	r := capitalRelation()
	if _, _, err := r.Split(len(r.Samples)+1, nil); err == nil {
		t.Fatal("expected error when n exceeds sample count")
	}
}

func TestSplitDeterministicUnderSeed(t *testing.T) {
	r := capitalRelation()

	a1, b1, _ := r.Split(5, rand.New(rand.NewSource(42)))
	a2, b2, _ := r.Split(5, rand.New(rand.NewSource(42)))

	if !reflect.DeepEqual(a1.Samples, a2.Samples) || !reflect.DeepEqual(b1.Samples, b2.Samples) {
		t.Fatal("same seed should give identical splits")
	}
}

func TestSplitDoesNotMutateOriginal(t *testing.T) {
	r := capitalRelation()
	before := append([]Sample(nil), r.Samples...)

	_, _, _ = r.Split(5, rand.New(rand.NewSource(1)))

	if !reflect.DeepEqual(r.Samples, before) {
		t.Fatal("split reordered the relation's own samples")
	}
}

func TestWithSamplesAndTemplate(t *testing.T) {
	r := capitalRelation()
	sub := r.WithSamples(r.Samples[:2]).WithPromptTemplate("{} has capital")

	if len(sub.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(sub.Samples))
	}
	if len(sub.PromptTemplates) != 1 || sub.PromptTemplates[0] != "{} has capital" {
		t.Fatalf("unexpected templates: %v", sub.PromptTemplates)
	}
	if len(r.Samples) != 8 {
		t.Fatal("WithSamples mutated the receiver")
	}
}

func TestLoadReadsSortedRelationFiles(t *testing.T) {
	dir := t.TempDir()

	writeRelation := func(file, name string) {
		data := `{"name": "` + name + `", "prompt_templates": ["{} is"], "samples": [{"subject": "a", "object": "b"}]}`
		if err := os.WriteFile(filepath.Join(dir, file), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeRelation("b_second.json", "second")
	writeRelation("a_first.json", "first")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Relations) != 2 {
		t.Fatalf("expected 2 relations, got %d", len(ds.Relations))
	}
	if ds.Relations[0].Name != "first" || ds.Relations[1].Name != "second" {
		t.Fatalf("relations out of order: %q, %q", ds.Relations[0].Name, ds.Relations[1].Name)
	}
}

func TestLoadRelationValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"prompt_templates": ["{}"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRelation(path); err == nil {
		t.Fatal("expected error for relation without a name")
	}
}

func TestSampleString(t *testing.T) {
	s := Sample{Subject: "France", Object: "Paris"}
	if s.String() != "France -> Paris" {
		t.Fatalf("unexpected string: %q", s.String())
	}
}
