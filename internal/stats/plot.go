package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

// Series is a named percentage series in [0, 100].
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisSeparator     = " │ "
	colorReset        = "\x1b[0m"
)

var (
	axisLabels = []struct {
		text string
		pct  float64
	}{{"100%", 100}, {"50%", 50}, {"0%", 0}}
	axisWidth    = utf8.RuneCountInString("100%")
	seriesColors = []string{"\x1b[36m", "\x1b[33m", "\x1b[35m", "\x1b[32m"}
)

// PlotWidthFor computes the chart width that fits in totalWidth columns.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = fallbackWidth
	}
	return max(minPlotWidth, totalWidth-axisWidth-utf8.RuneCountInString(axisSeparator))
}

// PlotSeries draws percentage series as a braille line chart on a fixed 0-100 axis.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	var drawn []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			drawn = append(drawn, s)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	width = max(width, minPlotWidth)

	// Each braille cell holds a 2x4 dot grid.
	dotsX, dotsY := width*2, height*4
	layers := make([][][]uint8, len(drawn))
	for si, s := range drawn {
		cells := newCells(width, height)
		values := resample(s.Values, width)
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, percentToDot(v, dotsY)
			if prevX < 0 {
				setDot(cells, px, py)
			} else {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if dx < dotsX {
						setDot(cells, dx, dy)
					}
				})
			}
			prevX, prevY = px, py
		}
		layers[si] = cells
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for y := 0; y < height; y++ {
		b.WriteString(fmt.Sprintf("%*s%s", axisWidth, rowLabel(y, height), axisSeparator))
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for si, cells := range layers {
				if cells[y][x] != 0 {
					mask |= cells[y][x]
					if owner < 0 {
						owner = si
					}
				}
			}
			ch := string(rune(0x2800 + int(mask)))
			if useColor && owner >= 0 {
				ch = seriesColors[owner%len(seriesColors)] + ch + colorReset
			}
			b.WriteString(ch)
		}
		b.WriteString("\n")
	}
	b.WriteString(legend(drawn, useColor) + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func rowLabel(y, height int) string {
	for _, label := range axisLabels {
		if percentToDot(label.pct, height*4)/4 == y {
			return label.text
		}
	}
	return ""
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		last := s.Values[len(s.Values)-1]
		label := fmt.Sprintf("⣿ %s (last %.1f%%)", s.Name, last)
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func newCells(width, height int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func percentToDot(v float64, dotsY int) int {
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((1 - v/100) * float64(dotsY-1)))
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := max((i+1)*n/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := min(int(pos), n-2)
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

// drawLine walks the dots between two points (Bresenham).
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func setDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if y < 0 || x < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleBit[x%2][y%4]
}

var brailleBit = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func seriesMinMax(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}
