package climbnotes

import (
	"fmt"
	"math"
	"strings"
)

// BuildSessionNotes turns extracted metrics into a readable session summary.
func BuildSessionNotes(a *Analysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString("Climbing Data Analysis\n")
	fmt.Fprintf(
		&b,
		"Recording: %d samples over %s\n",
		a.SampleCount,
		formatDuration(a.DurationS),
	)
	fmt.Fprintf(
		&b,
		"Force %.1f max / %.1f avg N (%.1f kg max)\n",
		a.MaxForceN,
		a.AvgForceN,
		a.MaxForceKG,
	)
	if a.BodyMassKG > 0 && a.MaxForceKG > 0 {
		fmt.Fprintf(&b, "Max pull: %.0f%% of bodyweight (%.1f kg body mass)\n", (a.MaxForceKG/a.BodyMassKG)*100.0, a.BodyMassKG)
	}

	b.WriteString("\nRate of Force Development\n")
	if len(a.Efforts) == 0 {
		b.WriteString("- No efforts detected in this recording.\n")
	}
	for _, e := range a.Efforts {
		if e.RFDNPerS == nil {
			fmt.Fprintf(
				&b,
				"- Effort %02d | peak %5.1f kg / %6.1f N | RFD n/a (peak coincides with onset)\n",
				e.Index,
				e.PeakKG,
				e.PeakN,
			)
			continue
		}
		fmt.Fprintf(
			&b,
			"- Effort %02d | peak %5.1f kg / %6.1f N | %.2fs to peak | RFD %.2f kg/s / %.2f N/s\n",
			e.Index,
			e.PeakKG,
			e.PeakN,
			e.TimeToPeakS,
			*e.RFDKGPerS,
			*e.RFDNPerS,
		)
	}
	if a.BestRFDNPerS != nil {
		fmt.Fprintf(&b, "Best RFD: %.2f N/s\n", *a.BestRFDNPerS)
	}

	if a.Structure.CanonicalLabel != "" {
		b.WriteString("\nProtocol\n")
		fmt.Fprintf(&b, "- %s (confidence %.0f%%)\n", a.Structure.CanonicalLabel, a.Structure.Confidence*100.0)
		if a.Structure.Description != "" {
			fmt.Fprintf(&b, "- %s\n", a.Structure.Description)
		}
	}

	b.WriteString("\nAssessment\n- ")
	b.WriteString(sessionAssessment(a))
	b.WriteByte('\n')

	for _, w := range a.Warnings {
		fmt.Fprintf(&b, "\nWarning: %s", w)
	}

	return strings.TrimSpace(b.String())
}

func sessionAssessment(a *Analysis) string {
	if a == nil || len(a.Efforts) == 0 {
		return "No efforts to assess; check that the recording captured actual pulls."
	}
	if len(a.Efforts) == 1 {
		return "Single effort recorded; repeat the measurement for a drift trend."
	}
	drift := a.Structure.PeakDriftPct
	switch {
	case math.Abs(drift) <= 5:
		return "Peak force held steady across efforts; the session load was repeatable."
	case drift < -15:
		return "Peak force faded noticeably by the final effort; consider longer rests or ending the set earlier."
	case drift > 10:
		return "Peak force climbed through the session; early efforts may have been submaximal warmups."
	default:
		return "Moderate drift in peak force across efforts; keep an eye on fatigue in the closing reps."
	}
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
