package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	climbnotes "climb-analyzer"
	"climb-analyzer/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional TOML config with analysis constants")
		bodyMass   = flag.Float64("body-mass", 0, "Body mass in kg for bodyweight-relative notes")
		jsonOut    = flag.Bool("json", false, "Emit full analysis as JSON")
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

	analysis, err := climbnotes.AnalyzeFile(flag.Arg(0), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(analysis.Notes)
}
