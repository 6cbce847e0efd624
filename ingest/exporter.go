package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportFile parses a recording CSV and writes a lossless export bundle.
// Output files:
//   - manifest.json
//   - rows.jsonl
//   - source.csv (optional)
func ExportFile(inputPath, outputDir string, opts ExportOptions) (*ExportResult, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read recording file: %w", err)
	}

	rec, err := ParseBytes(data, opts.GravityMPS2)
	if err != nil {
		return nil, fmt.Errorf("parse recording file: %w", err)
	}

	if err := ensureOutputDir(outputDir, opts.Overwrite); err != nil {
		return nil, err
	}

	rowsPath := filepath.Join(outputDir, "rows.jsonl")
	if err := writeJSONL(rowsPath, rec.Rows); err != nil {
		return nil, fmt.Errorf("write rows.jsonl: %w", err)
	}

	manifest := BuildManifest(rec, inputPath)
	manifestPath := filepath.Join(outputDir, "manifest.json")
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	sourceCopyPath := ""
	if opts.CopySourceFile {
		sourceCopyPath = filepath.Join(outputDir, "source.csv")
		if err := copyFile(inputPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source csv file: %w", err)
		}
	}

	return &ExportResult{
		OutputDir:       outputDir,
		ManifestPath:    manifestPath,
		RowsPath:        rowsPath,
		SourceCopyPath:  sourceCopyPath,
		RowCount:        len(rec.Rows),
		SourceSHA256:    rec.SourceSHA256,
		SourceSizeBytes: rec.SourceSizeBytes,
	}, nil
}

// BuildManifest assembles export metadata for a parsed recording.
func BuildManifest(rec *Recording, sourcePath string) Manifest {
	manifest := Manifest{
		FormatVersion:   ExportFormatVersion,
		GeneratedAt:     time.Now().UTC(),
		SourceFile:      sourcePath,
		SourceFileName:  filepath.Base(sourcePath),
		SourceSHA256:    rec.SourceSHA256,
		SourceSizeBytes: rec.SourceSizeBytes,
		GravityMPS2:     rec.GravityMPS2,
		RowsPath:        "rows.jsonl",
		RowCount:        len(rec.Rows),
		SchemaDescription: SchemaDetails{
			RecordType: "JSONL line-per-CSV-row preserving original order",
			Notes: []string{
				"Lossless: every raw column is exported alongside derived values.",
				"elapsed_ms is zero-based on the first row's epoch timestamp.",
				"force_n is mass_kg multiplied by the gravity constant in this manifest.",
				"Use row_index for deterministic chunking in downstream pipelines.",
			},
		},
	}
	if len(rec.Rows) > 0 {
		manifest.StartEpochMS = rec.Rows[0].TimestampEpochMS
		manifest.DurationMS = rec.Rows[len(rec.Rows)-1].ElapsedMS
	}
	return manifest
}

// MarshalJSON renders indented JSON with a trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out = append(out, '\n')
	return out, nil
}

// MarshalJSONL renders rows as JSONL bytes.
func MarshalJSONL(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriterSize(&buf, 1<<20)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
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

func writeJSONL(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriterSize(f, 1<<20)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return buf.Flush()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
