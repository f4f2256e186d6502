package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{10, 50, 90, 50, 10}},
		{Name: "B", Values: []float64{100, 100, 80}},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") || !strings.Contains(out, "B (last 80.0%)") {
		t.Fatalf("expected legend in output: %s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "100%") || !strings.HasPrefix(lines[4], "  0%") {
		t.Fatalf("unexpected axis labels:\n%s", out)
	}
	if got := utf8.RuneCountInString(lines[2]); got != axisWidth+3+12 {
		t.Fatalf("expected row width %d, got %d", axisWidth+3+12, got)
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, 20, 4, false); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-axisWidth-3 {
		t.Fatalf("expected width %d, got %d", 80-axisWidth-3, got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(0); got != fallbackWidth-axisWidth-3 {
		t.Fatalf("expected fallback width, got %d", got)
	}
}

func TestResample(t *testing.T) {
	if got := resample([]float64{0, 100}, 3); got[1] != 50 {
		t.Fatalf("expected interpolation, got %v", got)
	}
	if got := resample([]float64{10, 20, 30, 40}, 2); got[0] != 15 || got[1] != 35 {
		t.Fatalf("expected averaging, got %v", got)
	}
}
