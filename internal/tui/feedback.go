package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/ditado/internal/dictation"
)

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	missingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Strikethrough(true)
	extraStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Strikethrough(true)
	referenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// RenderFeedback renders the evaluated sentence word by word, wrapped to width.
// Without color, wrong words are marked *x*, missing words [-x] and extra words [+x];
// a trailing ^ flags a punctuation or case issue.
func RenderFeedback(metrics dictation.EvaluationMetrics, width int, useColor bool) string {
	words := make([]styledWord, 0, len(metrics.Words))
	for _, word := range metrics.Words {
		words = append(words, styleWord(word, useColor))
	}
	return wrapStyledWords(words, width)
}

// SummaryLine condenses the evaluation counts into one line.
func SummaryLine(metrics dictation.EvaluationMetrics) string {
	structural := metrics.MergeWords + metrics.SplitWords + metrics.SubstitutionWords
	return fmt.Sprintf("Score %d%% · words %d/%d · letters %d · punctuation %d · case %d · structure %d · missing %d · extra %d",
		metrics.AccuracyPercentage,
		metrics.CorrectWords,
		metrics.TotalWords,
		metrics.LetterErrors(),
		metrics.PunctuationErrors,
		metrics.CaseErrors,
		structural,
		metrics.OmittedWords,
		metrics.ExtraWords,
	)
}

func styleWord(word dictation.WordAnalysisResult, useColor bool) styledWord {
	text := word.Student
	style := correctStyle
	plain := text
	switch word.Status {
	case dictation.StatusWrong:
		style = incorrectStyle
		plain = "*" + text + "*"
	case dictation.StatusMissing:
		text = word.Reference
		style = missingStyle
		plain = "[-" + text + "]"
	case dictation.StatusExtra:
		style = extraStyle
		plain = "[+" + text + "]"
	}
	marked := word.Punctuation != dictation.PunctuationNone || word.Case != dictation.CaseNone
	if !useColor {
		if marked {
			plain += "^"
		}
		return styledWord{s: plain, width: runewidth.StringWidth(plain)}
	}
	if marked {
		style = style.Underline(true)
	}
	return styledWord{s: style.Render(text), width: runewidth.StringWidth(text)}
}

func renderScore(metrics dictation.EvaluationMetrics) string {
	return scoreStyle.Render(fmt.Sprintf("%d%%", metrics.AccuracyPercentage))
}

func renderReference(text string, width int, useColor bool) string {
	fields := strings.Fields(text)
	words := make([]styledWord, 0, len(fields))
	for _, field := range fields {
		s := field
		if useColor {
			s = referenceStyle.Render(field)
		}
		words = append(words, styledWord{s: s, width: runewidth.StringWidth(field)})
	}
	return wrapStyledWords(words, width)
}
