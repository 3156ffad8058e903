package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nkoval/virtualcampus/backend/internal/generator"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		buildings   = flag.Int("buildings", cfg.Buildings, "number of buildings to generate")
		floors      = flag.Int("floors", cfg.Floors, "floors per building")
		corridor    = flag.Int("corridor", cfg.CorridorNodes, "viewpoints per corridor")
		wingChance  = flag.Float64("wing-chance", cfg.WingChance, "probability a corridor node sprouts a side wing")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		output      = flag.String("output", "data/campus.yaml", "path of the dataset file to write")
		writeStdout = flag.Bool("stdout", false, "write dataset to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		Buildings:     *buildings,
		Floors:        *floors,
		CorridorNodes: *corridor,
		WingChance:    clampProbability(*wingChance),
		Seed:          *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	// Refuse to emit a dataset that would fail server startup.
	s, err := store.FromDataset(dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generated dataset is malformed: %v\n", err)
		os.Exit(1)
	}
	if err := s.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "generated dataset failed validation: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := yaml.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d locations into %s\n", len(dataset.Locations), *output)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
