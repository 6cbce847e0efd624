package climbnotes

import (
	"fmt"
	"math"
)

const protocolStructureSchemaVersion = "protocol_structure_v1"

// ProtocolStructure is a semantic view of the session layout inferred
// from effort timing alone.
type ProtocolStructure struct {
	SchemaVersion  string  `json:"schema_version"`
	Confidence     float64 `json:"confidence"`
	CanonicalLabel string  `json:"canonical_label"`
	EffortCount    int     `json:"effort_count"`
	AvgRestSeconds float64 `json:"avg_rest_seconds,omitempty"`
	AvgTimeToPeakS float64 `json:"avg_time_to_peak_s,omitempty"`
	PeakDriftPct   float64 `json:"peak_drift_pct,omitempty"`
	Description    string  `json:"description,omitempty"`
}

// InferProtocolStructure classifies the session from effort spacing and
// peak-force drift. It is a heuristic and says so in its confidence.
func InferProtocolStructure(efforts []Effort) ProtocolStructure {
	ps := ProtocolStructure{
		SchemaVersion: protocolStructureSchemaVersion,
		Confidence:    0.25,
		EffortCount:   len(efforts),
	}
	if len(efforts) == 0 {
		ps.CanonicalLabel = "unable to infer protocol (no efforts)"
		return ps
	}

	ttps := make([]float64, 0, len(efforts))
	for _, e := range efforts {
		if e.TimeToPeakS > 0 {
			ttps = append(ttps, e.TimeToPeakS)
		}
	}
	ps.AvgTimeToPeakS = avgFloat(ttps)

	if len(efforts) == 1 {
		ps.CanonicalLabel = "single max effort"
		ps.Confidence = 0.55
		ps.Description = "One isolated effort; not enough repetitions to infer a protocol."
		return ps
	}

	rests := make([]float64, 0, len(efforts)-1)
	for i := 1; i < len(efforts); i++ {
		rest := (efforts[i].StartTimeMS - efforts[i-1].PeakTimeMS) / 1000.0
		if rest > 0 {
			rests = append(rests, rest)
		}
	}
	ps.AvgRestSeconds = avgFloat(rests)
	ps.PeakDriftPct = pctChange(efforts[0].PeakN, efforts[len(efforts)-1].PeakN)

	switch {
	case ps.AvgRestSeconds >= 60:
		ps.CanonicalLabel = fmt.Sprintf("%dx max hangs", len(efforts))
		ps.Confidence = 0.6
		ps.Description = fmt.Sprintf("Long rests (%.0fs average) between %d efforts suggest a max-hang protocol.", ps.AvgRestSeconds, len(efforts))
	case ps.AvgRestSeconds > 0 && ps.AvgRestSeconds < 30 && len(efforts) >= 4:
		ps.CanonicalLabel = fmt.Sprintf("%dx repeaters", len(efforts))
		ps.Confidence = 0.6
		ps.Description = fmt.Sprintf("Short rests (%.0fs average) across %d efforts suggest a repeater protocol.", ps.AvgRestSeconds, len(efforts))
	default:
		ps.CanonicalLabel = fmt.Sprintf("%d efforts", len(efforts))
		ps.Confidence = 0.35
		ps.Description = "Effort spacing does not match a common hangboard protocol."
	}

	if math.Abs(ps.PeakDriftPct) >= 15 && len(efforts) >= 3 {
		ps.Confidence = math.Max(ps.Confidence-0.1, 0.25)
	}
	return ps
}

func pctChange(start, end float64) float64 {
	if start == 0 {
		return 0
	}
	return ((end / start) - 1.0) * 100.0
}
