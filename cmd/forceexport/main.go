package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"climb-analyzer/ingest"
)

func main() {
	var (
		outDir     = flag.String("out-dir", "", "Output directory for manifest.json and rows.jsonl")
		overwrite  = flag.Bool("overwrite", true, "Allow writing to non-empty output directories")
		copySource = flag.Bool("copy-source", true, "Copy original CSV into export directory as source.csv")
		gravity    = flag.Float64("gravity", 0, "Gravity constant for kg to N conversion (default 9.81)")
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-recording-csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	inputPath := flag.Arg(0)
	if strings.TrimSpace(*outDir) == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		*outDir = filepath.Join(".", "exports", base+"_"+ingest.ExportFormatVersion)
	}

	result, err := ingest.ExportFile(inputPath, *outDir, ingest.ExportOptions{
		Overwrite:      *overwrite,
		CopySourceFile: *copySource,
		GravityMPS2:    *gravity,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Export complete\n")
	fmt.Printf("Output dir: %s\n", result.OutputDir)
	fmt.Printf("Manifest:   %s\n", result.ManifestPath)
	fmt.Printf("Rows:       %s (%d rows)\n", result.RowsPath, result.RowCount)
	if result.SourceCopyPath != "" {
		fmt.Printf("Source csv: %s\n", result.SourceCopyPath)
	}
	fmt.Printf("SHA256:     %s (%d bytes)\n", result.SourceSHA256, result.SourceSizeBytes)
}
