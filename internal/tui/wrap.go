package tui

import "strings"

type styledWord struct {
	s     string
	width int
}

// wrapStyledWords joins words with single spaces, breaking lines by display width.
// A word wider than the line keeps a line of its own.
func wrapStyledWords(words []styledWord, width int) string {
	var out strings.Builder
	lineWidth := 0
	for i, word := range words {
		if i > 0 {
			if width > 0 && lineWidth+1+word.width > width {
				out.WriteByte('\n')
				lineWidth = 0
			} else {
				out.WriteByte(' ')
				lineWidth++
			}
		}
		out.WriteString(word.s)
		lineWidth += word.width
	}
	return out.String()
}
