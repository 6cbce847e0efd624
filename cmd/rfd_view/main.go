package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	climbnotes "climb-analyzer"
	"climb-analyzer/ingest"
	"climb-analyzer/pipeline"
	"climb-analyzer/viewer"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional TOML config with analysis constants")
		bodyMass   = flag.Float64("body-mass", 0, "Body mass in kg for bodyweight-relative notes")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-recording-csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := climbnotes.DefaultConfig()
	fileCfg, err := pipeline.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config failed: %v\n", err)
		os.Exit(1)
	}
	cfg = fileCfg.Apply(cfg)
	if *bodyMass > 0 {
		cfg.BodyMassKG = *bodyMass
	}

	rec, err := ingest.ParseFile(flag.Arg(0), cfg.GravityMPS2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse failed: %v\n", err)
		os.Exit(1)
	}
	analysis, err := climbnotes.AnalyzeSamples(rec.Samples, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}
	analysis.FilePath = flag.Arg(0)

	force := make([]float64, 0, len(rec.Samples))
	for _, s := range rec.Samples {
		force = append(force, s.ForceN)
	}

	if _, err := tea.NewProgram(viewer.NewModel(analysis, force)).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "viewer failed: %v\n", err)
		os.Exit(1)
	}
}
