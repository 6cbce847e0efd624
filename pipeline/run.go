package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	climbnotes "climb-analyzer"
	"climb-analyzer/ingest"
)

// Run executes the full rfd_analyze pipeline and writes all artifacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.CSVPath) == "" {
		return nil, fmt.Errorf("csv path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	baseExport, err := ingest.ExportFile(opts.CSVPath, opts.OutDir, ingest.ExportOptions{
		Overwrite:      opts.Overwrite,
		CopySourceFile: opts.CopySource,
		GravityMPS2:    cfg.GravityMPS2,
	})
	if err != nil {
		return nil, err
	}

	rec, err := ingest.ParseFile(opts.CSVPath, cfg.GravityMPS2)
	if err != nil {
		return nil, fmt.Errorf("parse recording: %w", err)
	}

	analysis, err := climbnotes.AnalyzeSamples(rec.Samples, cfg)
	if err != nil {
		return nil, fmt.Errorf("analyze recording: %w", err)
	}
	analysis.FilePath = opts.CSVPath

	samples := buildCanonicalSamples(rec)
	canonicalPath := filepath.Join(opts.OutDir, "canonical_samples."+format)
	switch format {
	case "csv":
		if err := writeCanonicalCSV(canonicalPath, samples); err != nil {
			return nil, fmt.Errorf("write canonical csv: %w", err)
		}
	case "parquet":
		if err := writeCanonicalParquet(canonicalPath, samples); err != nil {
			return nil, fmt.Errorf("write canonical parquet: %w", err)
		}
	}

	rfdPath := filepath.Join(opts.OutDir, "rfd_results.json")
	if err := writeJSON(rfdPath, RFDResultsFile{Efforts: analysis.Efforts, Lines: analysis.Lines}); err != nil {
		return nil, fmt.Errorf("write rfd_results.json: %w", err)
	}

	chartPath := filepath.Join(opts.OutDir, "chart.json")
	if err := writeJSON(chartPath, buildChart(rec.Samples, analysis)); err != nil {
		return nil, fmt.Errorf("write chart.json: %w", err)
	}

	summaryPath := filepath.Join(opts.OutDir, "session_summary.json")
	if err := writeJSON(summaryPath, buildSessionSummary(analysis)); err != nil {
		return nil, fmt.Errorf("write session_summary.json: %w", err)
	}

	notesPath := filepath.Join(opts.OutDir, "session_notes.md")
	if err := os.WriteFile(notesPath, []byte(analysis.Notes+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write session_notes.md: %w", err)
	}

	return &Result{
		OutputDir:            opts.OutDir,
		ManifestPath:         baseExport.ManifestPath,
		RowsPath:             baseExport.RowsPath,
		SourceCopyPath:       baseExport.SourceCopyPath,
		CanonicalSamplesPath: canonicalPath,
		RFDResultsPath:       rfdPath,
		ChartPath:            chartPath,
		SessionSummaryPath:   summaryPath,
		SessionNotesPath:     notesPath,
		Warnings:             analysis.Warnings,
	}, nil
}

// RunBytes executes the pipeline fully in memory and returns all
// artifacts keyed by file name.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.CSVData) == 0 {
		return nil, fmt.Errorf("csv data is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	sourceName := opts.SourceFileName
	if strings.TrimSpace(sourceName) == "" {
		sourceName = "input.csv"
	}

	cfg := opts.Config
	rec, err := ingest.ParseBytes(opts.CSVData, cfg.GravityMPS2)
	if err != nil {
		return nil, fmt.Errorf("parse recording: %w", err)
	}
	cfg.GravityMPS2 = rec.GravityMPS2

	analysis, err := climbnotes.AnalyzeSamples(rec.Samples, cfg)
	if err != nil {
		return nil, fmt.Errorf("analyze recording: %w", err)
	}
	analysis.FilePath = sourceName

	files := make(map[string][]byte, 8)

	manifestBytes, err := ingest.MarshalJSON(ingest.BuildManifest(rec, sourceName))
	if err != nil {
		return nil, fmt.Errorf("marshal manifest.json: %w", err)
	}
	files["manifest.json"] = manifestBytes

	rowsBytes, err := ingest.MarshalJSONL(rec.Rows)
	if err != nil {
		return nil, fmt.Errorf("marshal rows.jsonl: %w", err)
	}
	files["rows.jsonl"] = rowsBytes

	samples := buildCanonicalSamples(rec)
	switch format {
	case "csv":
		data, err := marshalCanonicalCSV(samples)
		if err != nil {
			return nil, fmt.Errorf("marshal canonical csv: %w", err)
		}
		files["canonical_samples.csv"] = data
	case "parquet":
		data, err := marshalCanonicalParquet(samples)
		if err != nil {
			return nil, fmt.Errorf("marshal canonical parquet: %w", err)
		}
		files["canonical_samples.parquet"] = data
	}

	for name, v := range map[string]any{
		"rfd_results.json":     RFDResultsFile{Efforts: analysis.Efforts, Lines: analysis.Lines},
		"chart.json":           buildChart(rec.Samples, analysis),
		"session_summary.json": buildSessionSummary(analysis),
	} {
		data, err := ingest.MarshalJSON(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		files[name] = data
	}
	files["session_notes.md"] = []byte(analysis.Notes + "\n")

	if opts.CopySource {
		files["source.csv"] = append([]byte(nil), opts.CSVData...)
	}

	return &BytesResult{
		Files:    files,
		Analysis: analysis,
		Warnings: analysis.Warnings,
	}, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

func resolveConfig(opts Options) (climbnotes.Config, error) {
	cfg := climbnotes.DefaultConfig()
	fileCfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg = fileCfg.Apply(cfg)
	if opts.BodyMassKG > 0 {
		cfg.BodyMassKG = opts.BodyMassKG
	}
	return cfg, nil
}

func buildCanonicalSamples(rec *ingest.Recording) []CanonicalSample {
	out := make([]CanonicalSample, 0, len(rec.Rows))
	for _, row := range rec.Rows {
		out = append(out, CanonicalSample{
			ElapsedMS:    row.ElapsedMS,
			ForceN:       row.ForceN,
			ForceKG:      row.MassKG,
			SampleNumber: row.SampleNumber,
			BattRaw:      row.BattRaw,
			RecordIndex:  row.RowIndex,
		})
	}
	return out
}

func buildChart(samples []ingest.Sample, analysis *climbnotes.Analysis) ChartFile {
	chart := ChartFile{
		Title:  "Highest Peaks and RFD Calculation Lines",
		XLabel: "Time (ms)",
		YLabel: "Force (N)",
		Series: make([]ChartPoint, 0, len(samples)),
		Peaks:  make([]PeakMark, 0, len(analysis.Efforts)),
		Lines:  analysis.Lines,
	}
	for _, s := range samples {
		chart.Series = append(chart.Series, ChartPoint{TimeMS: s.TimestampMS, ForceN: s.ForceN})
	}
	for _, e := range analysis.Efforts {
		mark := PeakMark{TimeMS: e.PeakTimeMS, ForceN: e.PeakN}
		if e.RFDNPerS != nil {
			mark.Label = fmt.Sprintf("%.2f", *e.RFDNPerS)
		}
		chart.Peaks = append(chart.Peaks, mark)
	}
	return chart
}

func buildSessionSummary(analysis *climbnotes.Analysis) SessionSummaryFile {
	summary := SessionSummaryFile{
		DurationS:     analysis.DurationS,
		SampleCount:   analysis.SampleCount,
		PeakCount:     analysis.PeakCount,
		PlateauCount:  analysis.PlateauCount,
		MaxForceN:     analysis.MaxForceN,
		MaxForceKG:    analysis.MaxForceKG,
		AvgForceN:     analysis.AvgForceN,
		BestRFDNPerS:  analysis.BestRFDNPerS,
		ProtocolLabel: analysis.Structure.CanonicalLabel,
		Warnings:      analysis.Warnings,
	}
	if analysis.BodyMassKG > 0 {
		summary.BodyMassKG = floatPtr(analysis.BodyMassKG)
	}
	return summary
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var canonicalHeader = []string{"elapsed_ms", "force_n", "force_kg", "sample_number", "batt_raw", "record_index"}

func writeCanonicalCSV(path string, samples []CanonicalSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := writeCanonicalRows(w, samples); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeCanonicalRows(w *csv.Writer, samples []CanonicalSample) error {
	if err := w.Write(canonicalHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.ElapsedMS),
			formatFloat(s.ForceN),
			formatFloat(s.ForceKG),
			formatFloat(s.SampleNumber),
			formatFloat(s.BattRaw),
			strconv.Itoa(s.RecordIndex),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}
