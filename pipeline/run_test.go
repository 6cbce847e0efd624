package pipeline

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	climbnotes "climb-analyzer"
)

// sessionCSVBytes builds a recorder CSV whose force signal has two peaks
// (50 N and 80 N) 400ms apart, forming one effort with an RFD of 160 N/s.
func sessionCSVBytes(t *testing.T) []byte {
	t.Helper()
	forcesN := []float64{0, 0, 0, 50, 0, 0, 0, 80, 0, 0}
	var b strings.Builder
	for i, n := range forcesN {
		epoch := 1714000000000 + int64(i)*100
		massKG := n / climbnotes.DefaultGravityMPS2
		b.WriteString(strconv.FormatInt(epoch, 10))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(",3300,")
		b.WriteString(strconv.FormatFloat(massKG, 'f', -1, 64))
		b.WriteString(",0\n")
	}
	return []byte(b.String())
}

func writeSessionCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.csv")
	if err := os.WriteFile(path, sessionCSVBytes(t), 0o644); err != nil {
		t.Fatalf("write session csv: %v", err)
	}
	return path
}

func readJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{
		CSVPath:    writeSessionCSV(t),
		OutDir:     outDir,
		Format:     "csv",
		CopySource: true,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, path := range []string{
		res.ManifestPath,
		res.RowsPath,
		res.SourceCopyPath,
		res.CanonicalSamplesPath,
		res.RFDResultsPath,
		res.ChartPath,
		res.SessionSummaryPath,
		res.SessionNotesPath,
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing artifact %s: %v", path, err)
		}
	}
	if filepath.Base(res.CanonicalSamplesPath) != "canonical_samples.csv" {
		t.Fatalf("unexpected canonical samples path %s", res.CanonicalSamplesPath)
	}

	var results RFDResultsFile
	readJSONFile(t, res.RFDResultsPath, &results)
	if len(results.Efforts) != 1 || len(results.Lines) != 1 {
		t.Fatalf("expected one effort with one line, got %d/%d", len(results.Efforts), len(results.Lines))
	}
	e := results.Efforts[0]
	if e.RFDNPerS == nil || math.Abs(*e.RFDNPerS-160.0) > 1e-6 {
		t.Fatalf("expected RFD 160 N/s, got %v", e.RFDNPerS)
	}
	if math.Abs(e.TimeToPeakS-0.5) > 1e-9 {
		t.Fatalf("expected 0.5s to peak, got %v", e.TimeToPeakS)
	}

	var chart ChartFile
	readJSONFile(t, res.ChartPath, &chart)
	if chart.Title != "Highest Peaks and RFD Calculation Lines" {
		t.Fatalf("unexpected chart title %q", chart.Title)
	}
	if len(chart.Series) != 10 || len(chart.Peaks) != 1 || len(chart.Lines) != 1 {
		t.Fatalf("unexpected chart shape: %d series / %d peaks / %d lines", len(chart.Series), len(chart.Peaks), len(chart.Lines))
	}
	if chart.Peaks[0].Label != "160.00" {
		t.Fatalf("expected RFD label 160.00, got %q", chart.Peaks[0].Label)
	}

	var summary SessionSummaryFile
	readJSONFile(t, res.SessionSummaryPath, &summary)
	if summary.PlateauCount != 1 || summary.PeakCount != 2 || summary.SampleCount != 10 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if math.Abs(summary.MaxForceN-80.0) > 1e-6 {
		t.Fatalf("expected max force 80 N, got %v", summary.MaxForceN)
	}

	notes, err := os.ReadFile(res.SessionNotesPath)
	if err != nil {
		t.Fatalf("read notes: %v", err)
	}
	if !strings.Contains(string(notes), "Climbing Data Analysis") {
		t.Fatal("notes missing header")
	}

	canonical, err := os.ReadFile(res.CanonicalSamplesPath)
	if err != nil {
		t.Fatalf("read canonical csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(canonical)), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected header plus 10 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(canonicalHeader, ",") {
		t.Fatalf("unexpected canonical header %q", lines[0])
	}
}

func TestRunRejectsBadInputs(t *testing.T) {
	if _, err := Run(Options{OutDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for missing csv path")
	}
	if _, err := Run(Options{CSVPath: "x.csv"}); err == nil {
		t.Fatal("expected error for missing output dir")
	}
	if _, err := Run(Options{CSVPath: "x.csv", OutDir: t.TempDir(), Format: "xlsx"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNormalizeFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "parquet", true},
		{"parquet", "parquet", true},
		{" CSV ", "csv", true},
		{"xlsx", "", false},
	}
	for _, tc := range cases {
		got, err := normalizeFormat(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("normalizeFormat(%q): unexpected error state %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("normalizeFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRunConfigOverridesPlateauGap(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "analysis.toml")
	// The two peaks are 400ms apart: a 300ms gap threshold must split them.
	configTOML := "[analysis]\nplateau-gap-ms = 300.0\nbody-mass-kg = 70.0\n"
	if err := os.WriteFile(configPath, []byte(configTOML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	res, err := Run(Options{
		CSVPath:    writeSessionCSV(t),
		OutDir:     filepath.Join(dir, "out"),
		ConfigPath: configPath,
		Format:     "csv",
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	var summary SessionSummaryFile
	readJSONFile(t, res.SessionSummaryPath, &summary)
	if summary.PlateauCount != 2 {
		t.Fatalf("expected 2 plateaus under the tightened gap, got %d", summary.PlateauCount)
	}
	if summary.BodyMassKG == nil || *summary.BodyMassKG != 70.0 {
		t.Fatalf("expected body mass 70 from config, got %v", summary.BodyMassKG)
	}
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config must not fail: %v", err)
	}
	applied := cfg.Apply(climbnotes.DefaultConfig())
	if applied.PlateauGapMS != climbnotes.DefaultPlateauGapMS {
		t.Fatalf("expected defaults to survive, got %v", applied.PlateauGapMS)
	}
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	res, err := RunBytes(BytesOptions{
		SourceFileName: "session.csv",
		CSVData:        sessionCSVBytes(t),
		Config:         climbnotes.DefaultConfig(),
		Format:         "csv",
		CopySource:     true,
	})
	if err != nil {
		t.Fatalf("RunBytes error: %v", err)
	}

	for _, name := range []string{
		"manifest.json",
		"rows.jsonl",
		"canonical_samples.csv",
		"rfd_results.json",
		"chart.json",
		"session_summary.json",
		"session_notes.md",
		"source.csv",
	} {
		if len(res.Files[name]) == 0 {
			t.Fatalf("missing in-memory artifact %s", name)
		}
	}

	var results RFDResultsFile
	if err := json.Unmarshal(res.Files["rfd_results.json"], &results); err != nil {
		t.Fatalf("unmarshal rfd_results.json: %v", err)
	}
	if len(results.Efforts) != 1 || results.Efforts[0].RFDNPerS == nil {
		t.Fatalf("unexpected efforts: %+v", results.Efforts)
	}
	if res.Analysis == nil || res.Analysis.PlateauCount != 1 {
		t.Fatalf("unexpected analysis: %+v", res.Analysis)
	}
	if string(res.Files["source.csv"]) != string(sessionCSVBytes(t)) {
		t.Fatal("source copy is not byte-identical")
	}
}

func TestRunBytesParquetArtifact(t *testing.T) {
	res, err := RunBytes(BytesOptions{
		CSVData: sessionCSVBytes(t),
		Config:  climbnotes.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("RunBytes error: %v", err)
	}
	data := res.Files["canonical_samples.parquet"]
	if len(data) == 0 {
		t.Fatal("missing parquet artifact")
	}
	// Parquet files are framed by the PAR1 magic at both ends.
	if string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Fatal("artifact does not look like a parquet file")
	}
}
