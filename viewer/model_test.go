package viewer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	climbnotes "climb-analyzer"
	"climb-analyzer/ingest"
)

func testAnalysis(t *testing.T) (*climbnotes.Analysis, []float64) {
	t.Helper()
	forces := []float64{0, 0, 0, 50, 0, 0, 0, 80, 0, 0}
	samples := make([]ingest.Sample, len(forces))
	for i, n := range forces {
		samples[i] = ingest.Sample{TimestampMS: float64(i) * 100, ForceN: n}
	}
	analysis, err := climbnotes.AnalyzeSamples(samples, climbnotes.DefaultConfig())
	if err != nil {
		t.Fatalf("AnalyzeSamples error: %v", err)
	}
	return analysis, forces
}

func TestViewShowsAnalysis(t *testing.T) {
	analysis, forces := testAnalysis(t)
	m := NewModel(analysis, forces)

	out := m.View()
	for _, want := range []string{"Climbing Data Analysis", "10 samples", "#01", "160.00 N/s", "Best RFD", "[q]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestViewEmptyAfterQuit(t *testing.T) {
	analysis, forces := testAnalysis(t)
	m := NewModel(analysis, forces)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
	if view := next.View(); view != "" {
		t.Fatalf("expected empty view after quit, got %q", view)
	}
}

func TestViewHandlesEmptyAnalysis(t *testing.T) {
	analysis, err := climbnotes.AnalyzeSamples(nil, climbnotes.DefaultConfig())
	if err != nil {
		t.Fatalf("AnalyzeSamples error: %v", err)
	}
	m := NewModel(analysis, nil)
	out := m.View()
	if !strings.Contains(out, "no efforts detected") {
		t.Fatalf("expected empty-effort notice:\n%s", out)
	}
}

func TestDownsampleMaxKeepsPeaks(t *testing.T) {
	values := make([]float64, 1000)
	values[637] = 99 // an isolated spike must survive downsampling
	out := downsampleMax(values, 64)
	if len(out) > 64 {
		t.Fatalf("expected at most 64 points, got %d", len(out))
	}
	found := false
	for _, v := range out {
		if v == 99 {
			found = true
		}
	}
	if !found {
		t.Fatal("spike lost in downsampling")
	}

	short := []float64{1, 2, 3}
	if got := downsampleMax(short, 64); len(got) != 3 {
		t.Fatalf("short series must pass through, got %d points", len(got))
	}
}
