package ingest

import "time"

const (
	// ExportFormatVersion identifies the on-disk schema for recording exports.
	ExportFormatVersion = "force_csv_jsonl_v1"
)

// Raw recorder CSV column layout. The file carries no header row.
const (
	colTimestamp    = 0
	colSampleNumber = 1
	colBattRaw      = 2
	colMassKG       = 3
	colMasses       = 4

	columnCount = 5
)

// Sample is one normalized point of the force signal: a zero-based
// millisecond offset and the measured force in newtons.
type Sample struct {
	TimestampMS float64 `json:"timestamp_ms"`
	ForceN      float64 `json:"force_n"`
}

// Row is one raw CSV row plus its derived values. One Row per JSONL line
// in rows.jsonl; the stream preserves original file order.
type Row struct {
	RowIndex         int     `json:"row_index"`
	TimestampEpochMS int64   `json:"timestamp_epoch_ms"`
	SampleNumber     float64 `json:"sample_number"`
	BattRaw          float64 `json:"batt_raw"`
	MassKG           float64 `json:"mass_kg"`
	Masses           float64 `json:"masses"`
	ElapsedMS        float64 `json:"elapsed_ms"`
	ForceN           float64 `json:"force_n"`
}

// Recording is the in-memory representation of a parsed force recording.
type Recording struct {
	Rows            []Row
	Samples         []Sample
	GravityMPS2     float64
	SourceSHA256    string
	SourceSizeBytes int64
}

// ExportOptions controls export behavior.
type ExportOptions struct {
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool

	// CopySourceFile writes a byte-for-byte copy of the source CSV to the output directory.
	CopySourceFile bool

	// GravityMPS2 converts the raw kilogram column to newtons. Zero means 9.81.
	GravityMPS2 float64
}

// ExportResult describes generated files.
type ExportResult struct {
	OutputDir       string `json:"output_dir"`
	ManifestPath    string `json:"manifest_path"`
	RowsPath        string `json:"rows_path"`
	SourceCopyPath  string `json:"source_copy_path,omitempty"`
	RowCount        int    `json:"row_count"`
	SourceSHA256    string `json:"source_sha256"`
	SourceSizeBytes int64  `json:"source_size_bytes"`
}

// Manifest captures export metadata and pointers to exported files.
type Manifest struct {
	FormatVersion     string        `json:"format_version"`
	GeneratedAt       time.Time     `json:"generated_at"`
	SourceFile        string        `json:"source_file"`
	SourceFileName    string        `json:"source_file_name"`
	SourceSHA256      string        `json:"source_sha256"`
	SourceSizeBytes   int64         `json:"source_size_bytes"`
	GravityMPS2       float64       `json:"gravity_mps2"`
	RowsPath          string        `json:"rows_path"`
	RowCount          int           `json:"row_count"`
	StartEpochMS      int64         `json:"start_epoch_ms,omitempty"`
	DurationMS        float64       `json:"duration_ms"`
	SchemaDescription SchemaDetails `json:"schema_description"`
}

// SchemaDetails documents the row shape for downstream applications.
type SchemaDetails struct {
	RecordType string   `json:"record_type"`
	Notes      []string `json:"notes"`
}
