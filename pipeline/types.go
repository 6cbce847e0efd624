package pipeline

import climbnotes "climb-analyzer"

// Options configures the rfd_analyze pipeline.
type Options struct {
	CSVPath    string
	OutDir     string
	ConfigPath string
	BodyMassKG float64
	Format     string // parquet|csv
	Overwrite  bool
	CopySource bool
}

// BytesOptions configures an in-memory pipeline run.
type BytesOptions struct {
	SourceFileName string
	CSVData        []byte
	Config         climbnotes.Config
	Format         string // parquet|csv
	CopySource     bool
}

// Result returns generated output paths.
type Result struct {
	OutputDir            string   `json:"output_dir"`
	ManifestPath         string   `json:"manifest_path"`
	RowsPath             string   `json:"rows_path"`
	SourceCopyPath       string   `json:"source_copy_path,omitempty"`
	CanonicalSamplesPath string   `json:"canonical_samples_path"`
	RFDResultsPath       string   `json:"rfd_results_path"`
	ChartPath            string   `json:"chart_path"`
	SessionSummaryPath   string   `json:"session_summary_path"`
	SessionNotesPath     string   `json:"session_notes_path"`
	Warnings             []string `json:"warnings,omitempty"`
}

// BytesResult holds all artifacts of an in-memory run keyed by file name.
type BytesResult struct {
	Files    map[string][]byte
	Analysis *climbnotes.Analysis
	Warnings []string
}

// CanonicalSample is one per-sample row of the canonical output table.
type CanonicalSample struct {
	ElapsedMS    float64 `json:"elapsed_ms"`
	ForceN       float64 `json:"force_n"`
	ForceKG      float64 `json:"force_kg"`
	SampleNumber float64 `json:"sample_number"`
	BattRaw      float64 `json:"batt_raw"`
	RecordIndex  int     `json:"record_index"`
}

// RFDResultsFile is the ordered per-effort output document.
type RFDResultsFile struct {
	Efforts []climbnotes.Effort  `json:"efforts"`
	Lines   []climbnotes.RFDLine `json:"rfd_lines"`
}

// ChartFile is the precomputed presentation document. The charting layer
// renders it as-is and never recomputes analysis values.
type ChartFile struct {
	Title  string               `json:"title"`
	XLabel string               `json:"x_label"`
	YLabel string               `json:"y_label"`
	Series []ChartPoint         `json:"series"`
	Peaks  []PeakMark           `json:"peaks"`
	Lines  []climbnotes.RFDLine `json:"rfd_lines"`
}

// ChartPoint is one raw force sample on the chart's line layer.
type ChartPoint struct {
	TimeMS float64 `json:"time_ms"`
	ForceN float64 `json:"force_n"`
}

// PeakMark is a marked highest peak with its RFD text label. Label is
// empty when the effort's RFD is undefined.
type PeakMark struct {
	TimeMS float64 `json:"time_ms"`
	ForceN float64 `json:"force_n"`
	Label  string  `json:"label,omitempty"`
}

// SessionSummaryFile contains one-session aggregate metrics.
type SessionSummaryFile struct {
	DurationS     float64  `json:"duration_s"`
	SampleCount   int      `json:"sample_count"`
	PeakCount     int      `json:"peak_count"`
	PlateauCount  int      `json:"plateau_count"`
	MaxForceN     float64  `json:"max_force_n"`
	MaxForceKG    float64  `json:"max_force_kg"`
	AvgForceN     float64  `json:"avg_force_n"`
	BestRFDNPerS  *float64 `json:"best_rfd_n_per_s,omitempty"`
	BodyMassKG    *float64 `json:"body_mass_kg,omitempty"`
	ProtocolLabel string   `json:"protocol_label,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}
