// Package climbnotes analyzes hangboard force recordings.
//
// A recording is a single session's force-vs-time signal. The analysis
// finds local force maxima, groups temporally close peaks into plateaus
// (one plateau per discrete effort), and computes Rate of Force
// Development for each effort: peak force divided by the time from the
// effort's onset to its highest peak.
package climbnotes

import (
	"errors"
	"fmt"

	"climb-analyzer/ingest"
)

// Defaults for the analysis constants. All three are overridable through
// Config so tests can substitute values.
const (
	DefaultGravityMPS2        = 9.81
	DefaultBaselineThresholdN = 0.1
	DefaultPlateauGapMS       = 5000.0
)

// minSignalLen is the shortest sequence that can contain a local maximum.
const minSignalLen = 3

var (
	// ErrEmptySignal reports a signal too short to contain a peak.
	ErrEmptySignal = errors.New("signal has fewer than 3 samples")

	// ErrNoPeaks reports that segmentation was given zero peaks.
	ErrNoPeaks = errors.New("no peaks to segment")
)

// Config carries the analysis constants.
type Config struct {
	// GravityMPS2 converts between newtons and kilogram-equivalents.
	GravityMPS2 float64

	// BaselineThresholdN is the force level at or below which a sample
	// counts as "at rest" when searching for an effort's onset.
	BaselineThresholdN float64

	// PlateauGapMS is the largest gap between consecutive peak timestamps
	// that still keeps them in the same plateau.
	PlateauGapMS float64

	// BodyMassKG, when positive, adds bodyweight-relative context to the
	// session notes. It does not affect the RFD computation.
	BodyMassKG float64
}

// DefaultConfig returns the standard analysis constants.
func DefaultConfig() Config {
	return Config{
		GravityMPS2:        DefaultGravityMPS2,
		BaselineThresholdN: DefaultBaselineThresholdN,
		PlateauGapMS:       DefaultPlateauGapMS,
	}
}

func (c Config) withDefaults() Config {
	if c.GravityMPS2 <= 0 {
		c.GravityMPS2 = DefaultGravityMPS2
	}
	if c.BaselineThresholdN <= 0 {
		c.BaselineThresholdN = DefaultBaselineThresholdN
	}
	if c.PlateauGapMS <= 0 {
		c.PlateauGapMS = DefaultPlateauGapMS
	}
	return c
}

// Effort is the per-plateau RFD result. RFD fields are nil when
// time-to-peak is not positive; the absence is meaningful and must not be
// replaced by a numeric sentinel.
type Effort struct {
	Index            int      `json:"index"`
	PeakIndices      []int    `json:"peak_indices"`
	OnsetIndex       int      `json:"onset_index"`
	HighestPeakIndex int      `json:"highest_peak_index"`
	StartTimeMS      float64  `json:"start_time_ms"`
	PeakTimeMS       float64  `json:"peak_time_ms"`
	TimeToPeakS      float64  `json:"time_to_peak_s"`
	PeakKG           float64  `json:"peak_kg"`
	PeakN            float64  `json:"peak_n"`
	RFDKGPerS        *float64 `json:"rfd_kg_per_s,omitempty"`
	RFDNPerS         *float64 `json:"rfd_n_per_s,omitempty"`
}

// RFDLine is the render-ready segment from an effort's onset at zero
// force up to its highest peak.
type RFDLine struct {
	StartTimeMS float64 `json:"start_time_ms"`
	EndTimeMS   float64 `json:"end_time_ms"`
	StartValueN float64 `json:"start_value_n"`
	EndValueN   float64 `json:"end_value_n"`
}

// Analysis contains extracted metrics and generated notes for one recording.
type Analysis struct {
	FilePath     string            `json:"file_path,omitempty"`
	SampleCount  int               `json:"sample_count"`
	DurationS    float64           `json:"duration_s"`
	MaxForceN    float64           `json:"max_force_n"`
	MaxForceKG   float64           `json:"max_force_kg"`
	AvgForceN    float64           `json:"avg_force_n"`
	PeakCount    int               `json:"peak_count"`
	PlateauCount int               `json:"plateau_count"`
	Efforts      []Effort          `json:"efforts,omitempty"`
	Lines        []RFDLine         `json:"rfd_lines,omitempty"`
	BestRFDNPerS *float64          `json:"best_rfd_n_per_s,omitempty"`
	BodyMassKG   float64           `json:"body_mass_kg,omitempty"`
	Structure    ProtocolStructure `json:"protocol_structure"`
	Warnings     []string          `json:"warnings,omitempty"`
	Notes        string            `json:"notes"`
}

// AnalyzeFile parses and analyzes a recording CSV.
func AnalyzeFile(path string, cfg Config) (*Analysis, error) {
	cfg = cfg.withDefaults()
	rec, err := ingest.ParseFile(path, cfg.GravityMPS2)
	if err != nil {
		return nil, err
	}
	analysis, err := AnalyzeSamples(rec.Samples, cfg)
	if err != nil {
		return nil, err
	}
	analysis.FilePath = path
	return analysis, nil
}

// AnalyzeSamples runs the full peak/plateau/RFD analysis over an ordered
// sample sequence. Degenerate signals (too short, or without any local
// maximum) yield an empty result set with a warning rather than an error.
func AnalyzeSamples(samples []ingest.Sample, cfg Config) (*Analysis, error) {
	cfg = cfg.withDefaults()

	analysis := &Analysis{
		SampleCount: len(samples),
		BodyMassKG:  cfg.BodyMassKG,
	}

	timestamps := make([]float64, len(samples))
	forces := make([]float64, len(samples))
	for i, s := range samples {
		timestamps[i] = s.TimestampMS
		forces[i] = s.ForceN
	}

	if len(samples) > 1 {
		analysis.DurationS = (timestamps[len(timestamps)-1] - timestamps[0]) / 1000.0
	}
	analysis.MaxForceN = maxFloat(forces)
	analysis.MaxForceKG = analysis.MaxForceN / cfg.GravityMPS2
	analysis.AvgForceN = avgFloat(forces)

	finish := func() (*Analysis, error) {
		analysis.Structure = InferProtocolStructure(analysis.Efforts)
		analysis.Notes = BuildSessionNotes(analysis)
		return analysis, nil
	}

	peaks, err := FindPeaks(forces)
	if err != nil {
		if errors.Is(err, ErrEmptySignal) {
			analysis.Warnings = append(analysis.Warnings, "no peaks found: recording has fewer than 3 samples")
			return finish()
		}
		return nil, err
	}
	analysis.PeakCount = len(peaks)

	plateaus, err := SegmentPlateaus(peaks, timestamps, cfg.PlateauGapMS)
	if err != nil {
		if errors.Is(err, ErrNoPeaks) {
			analysis.Warnings = append(analysis.Warnings, "no peaks found: signal has no local maxima")
			return finish()
		}
		return nil, err
	}
	analysis.PlateauCount = len(plateaus)

	analysis.Efforts, analysis.Lines = ComputeEfforts(plateaus, timestamps, forces, cfg)
	for _, e := range analysis.Efforts {
		if e.RFDNPerS == nil {
			analysis.Warnings = append(analysis.Warnings, fmt.Sprintf("effort %d: RFD undefined (time to peak is not positive)", e.Index))
			continue
		}
		if analysis.BestRFDNPerS == nil || *e.RFDNPerS > *analysis.BestRFDNPerS {
			analysis.BestRFDNPerS = floatPtr(*e.RFDNPerS)
		}
	}

	return finish()
}

// FindPeaks returns the indices of local force maxima in ascending order.
// A sample strictly greater than both neighbors is a peak; a flat-topped
// rise followed by a fall reports the midpoint of the flat run. No height,
// distance, or prominence filtering is applied, so dense noisy signals can
// over-detect shallow maxima.
func FindPeaks(force []float64) ([]int, error) {
	if len(force) < minSignalLen {
		return nil, ErrEmptySignal
	}

	peaks := make([]int, 0, 16)
	i := 1
	last := len(force) - 1
	for i < last {
		if force[i-1] >= force[i] {
			i++
			continue
		}

		// Rising edge at i. Walk over any flat top before deciding.
		ahead := i + 1
		for ahead < last && force[ahead] == force[i] {
			ahead++
		}
		if force[ahead] < force[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead
			continue
		}
		i = ahead
	}
	return peaks, nil
}

// SegmentPlateaus partitions peak indices into plateaus. A peak joins the
// current plateau when its timestamp is strictly less than gapMS after the
// immediately preceding peak's timestamp; membership is a chain of
// consecutive closeness, so a plateau's total span can exceed gapMS.
func SegmentPlateaus(peaks []int, timestampsMS []float64, gapMS float64) ([][]int, error) {
	if len(peaks) == 0 {
		return nil, ErrNoPeaks
	}

	plateaus := make([][]int, 0, 8)
	current := []int{peaks[0]}
	for i := 1; i < len(peaks); i++ {
		if timestampsMS[peaks[i]]-timestampsMS[peaks[i-1]] < gapMS {
			current = append(current, peaks[i])
			continue
		}
		plateaus = append(plateaus, current)
		current = []int{peaks[i]}
	}
	plateaus = append(plateaus, current)
	return plateaus, nil
}

// ComputeEfforts derives the per-plateau RFD results and their render
// lines, in plateau order. Plateaus are independent: a degenerate
// time-to-peak nulls out one effort's RFD without affecting the rest.
func ComputeEfforts(plateaus [][]int, timestampsMS, forceN []float64, cfg Config) ([]Effort, []RFDLine) {
	cfg = cfg.withDefaults()

	efforts := make([]Effort, 0, len(plateaus))
	lines := make([]RFDLine, 0, len(plateaus))
	for i, plateau := range plateaus {
		highest := highestPeakIndex(plateau, forceN)
		onset := onsetIndex(forceN, plateau[0], cfg.BaselineThresholdN)

		startTime := timestampsMS[onset]
		peakTime := timestampsMS[highest]
		timeToPeak := (peakTime - startTime) / 1000.0
		peakN := forceN[highest]

		effort := Effort{
			Index:            i + 1,
			PeakIndices:      plateau,
			OnsetIndex:       onset,
			HighestPeakIndex: highest,
			StartTimeMS:      startTime,
			PeakTimeMS:       peakTime,
			TimeToPeakS:      timeToPeak,
			PeakKG:           peakN / cfg.GravityMPS2,
			PeakN:            peakN,
		}
		if timeToPeak > 0 {
			rfd := peakN / timeToPeak
			effort.RFDNPerS = floatPtr(rfd)
			effort.RFDKGPerS = floatPtr(rfd / cfg.GravityMPS2)
		}
		efforts = append(efforts, effort)

		lines = append(lines, RFDLine{
			StartTimeMS: startTime,
			EndTimeMS:   peakTime,
			StartValueN: 0,
			EndValueN:   peakN,
		})
	}
	return efforts, lines
}

// highestPeakIndex picks the plateau peak with maximal force. A strict
// greater-than scan keeps the first index attaining the maximum when
// duplicates occur.
func highestPeakIndex(plateau []int, forceN []float64) int {
	best := plateau[0]
	for _, idx := range plateau[1:] {
		if forceN[idx] > forceN[best] {
			best = idx
		}
	}
	return best
}

// onsetIndex scans backward from the plateau's first peak, sample by
// sample, for the last reading at or below the baseline threshold. When
// the scan reaches the start of the recording without finding one, the
// boundary sample is the onset even if it exceeds the baseline. Linear in
// the distance back to the previous rest.
func onsetIndex(forceN []float64, firstPeak int, baselineN float64) int {
	for idx := firstPeak - 1; idx >= 0; idx-- {
		if forceN[idx] <= baselineN {
			return idx
		}
	}
	return 0
}

func avgFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for i := 1; i < len(values); i++ {
		if values[i] > m {
			m = values[i]
		}
	}
	return m
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}
