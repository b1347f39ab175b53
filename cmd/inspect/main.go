package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/danmackay/relation-probe/go-sweep/internal/results"
	"github.com/danmackay/relation-probe/go-sweep/internal/sweep"
)

// #region main

func main() {
	resultsDir := flag.String("results", "", "results directory holding sweep_results.db")
	relation := flag.String("relation", "", "show per-layer detail for one relation")
	recallK := flag.Int("k", sweep.DefaultRecallK, "recall rank for summaries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *resultsDir == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --results path/to/results [--relation name] [--k N] [--json]")
		os.Exit(2)
	}

	store, err := results.Open(*resultsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open results: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *relation != "" {
		err = runDetailMode(store, *relation, *recallK, *jsonOut)
	} else {
		err = runListMode(store, *recallK, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	Relation string  `json:"relation"`
	Trials   int     `json:"trials"`
	Layer    int     `json:"layer"`
	Beta     float64 `json:"beta"`
	Recall   float64 `json:"recall"`
}

func runListMode(store *results.Store, recallK int, jsonOut bool) error {
	names, err := store.ListNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "no relation results found")
		return nil
	}

	var rows []listRow
	for _, name := range names {
		res, ok, err := store.Load(name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		row := listRow{Relation: name, Trials: len(res.Trials)}
		if best, err := res.Best(recallK); err == nil {
			row.Layer = best.Layer
			row.Beta = best.Beta.Mean
			row.Recall = best.Recall.Mean
		}
		rows = append(rows, row)
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-30s  %6s  %5s  %6s  %s\n", "Relation", "Trials", "Layer", "Beta", fmt.Sprintf("Recall@%d", recallK))
	for _, r := range rows {
		fmt.Printf("%-30s  %6d  %5d  %6.2f  %.2f\n", r.Relation, r.Trials, r.Layer, r.Beta, r.Recall)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(store *results.Store, name string, recallK int, jsonOut bool) error {
	res, ok, err := store.Load(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no results for relation %q", name)
	}

	byLayer := res.ByLayer(recallK)
	layers := make([]int, 0, len(byLayer))
	for layer := range byLayer {
		layers = append(layers, layer)
	}
	sort.Ints(layers)

	if jsonOut {
		out := make([]sweep.LayerSummary, 0, len(layers))
		for _, layer := range layers {
			out = append(out, byLayer[layer])
		}
		return printJSON(out)
	}

	fmt.Printf("Relation: %s (%d trials)\n\n", res.RelationName, len(res.Trials))
	fmt.Printf("%5s  %-14s  %s\n", "Layer", "Beta", fmt.Sprintf("Recall@%d", recallK))
	for _, layer := range layers {
		summ := byLayer[layer]
		fmt.Printf("%5d  %-14s  %s\n", layer, summ.Beta, summ.Recall)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
