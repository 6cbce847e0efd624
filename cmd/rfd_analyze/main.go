package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"climb-analyzer/pipeline"
)

func main() {
	var (
		csvPath    = flag.String("csv", "", "Path to input recording CSV")
		outDir     = flag.String("out", "", "Output directory")
		configPath = flag.String("config", "", "Optional TOML config with analysis constants")
		bodyMass   = flag.Float64("body-mass", 0, "Body mass in kg for bodyweight-relative notes")
		format     = flag.String("format", "parquet", "Canonical sample format: parquet|csv")
		overwrite  = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --csv session.csv --out outdir [--config rfd.toml] [--body-mass 60] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*csvPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		CSVPath:    *csvPath,
		OutDir:     *outDir,
		ConfigPath: *configPath,
		BodyMassKG: *bodyMass,
		Format:     *format,
		Overwrite:  *overwrite,
		CopySource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "rfd_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("rfd_analyze complete\n")
	fmt.Printf("Output dir:          %s\n", result.OutputDir)
	fmt.Printf("manifest.json:       %s\n", result.ManifestPath)
	fmt.Printf("rows.jsonl:          %s\n", result.RowsPath)
	fmt.Printf("canonical samples:   %s\n", result.CanonicalSamplesPath)
	fmt.Printf("rfd results:         %s\n", result.RFDResultsPath)
	fmt.Printf("chart:               %s\n", result.ChartPath)
	fmt.Printf("session summary:     %s\n", result.SessionSummaryPath)
	fmt.Printf("session notes:       %s\n", result.SessionNotesPath)
	if result.SourceCopyPath != "" {
		fmt.Printf("source copy:         %s\n", result.SourceCopyPath)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning:             %s\n", w)
	}
}
