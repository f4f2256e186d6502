// Package stats contains statistics calculations and reporting.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/ditado/internal/dictation"
	"github.com/verte-zerg/ditado/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RecordFromMetrics flattens an evaluation into a storable row.
func RecordFromMetrics(metrics dictation.EvaluationMetrics, student, exerciseID, reference, typed string, now time.Time) (model.EvaluationRecord, error) {
	detail, err := json.Marshal(metrics)
	if err != nil {
		return model.EvaluationRecord{}, fmt.Errorf("failed to encode evaluation detail: %w", err)
	}
	return model.EvaluationRecord{
		CreatedAt:            now,
		Student:              student,
		ExerciseID:           exerciseID,
		ReferenceText:        reference,
		StudentText:          typed,
		TotalWords:           metrics.TotalWords,
		CorrectWords:         metrics.CorrectWords,
		OmittedWords:         metrics.OmittedWords,
		ExtraWords:           metrics.ExtraWords,
		OmissionLetters:      metrics.OmissionLetters,
		InsertionLetters:     metrics.InsertionLetters,
		SubstitutionLetters:  metrics.SubstitutionLetters,
		TranspositionLetters: metrics.TranspositionLetters,
		PunctuationErrors:    metrics.PunctuationErrors,
		CaseErrors:           metrics.CaseErrors,
		MergeWords:           metrics.MergeWords,
		SplitWords:           metrics.SplitWords,
		SubstitutionWords:    metrics.SubstitutionWords,
		Accuracy:             metrics.AccuracyPercentage,
		DetailJSON:           string(detail),
	}, nil
}

// LetterStatsFromMetrics counts outcomes per reference letter.
// Inserted letters have no reference letter and are not counted.
func LetterStatsFromMetrics(metrics dictation.EvaluationMetrics) []model.LetterStats {
	byLetter := map[string]*model.LetterStats{}
	for _, word := range metrics.Words {
		for _, detail := range word.Letters {
			if detail.ReferenceChar == "" {
				continue
			}
			ls, ok := byLetter[detail.ReferenceChar]
			if !ok {
				ls = &model.LetterStats{Letter: detail.ReferenceChar}
				byLetter[detail.ReferenceChar] = ls
			}
			if detail.Kind == dictation.Correct {
				ls.Correct++
			} else {
				ls.Incorrect++
			}
		}
	}
	out := make([]model.LetterStats, 0, len(byLetter))
	for _, ls := range byLetter {
		out = append(out, *ls)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := seriesMinMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of evaluations.
func RenderSummary(w io.Writer, evaluations []model.EvaluationAggregate) error {
	if len(evaluations) == 0 {
		_, err := fmt.Fprintln(w, "No evaluations found.")
		return err
	}
	var totalAcc, words, correct, letters, punct, cases, wordErrs int
	best := 0
	for _, e := range evaluations {
		totalAcc += e.Accuracy
		best = max(best, e.Accuracy)
		words += e.TotalWords
		correct += e.CorrectWords
		letters += e.LetterErrors
		punct += e.PunctuationErrors
		cases += e.CaseErrors
		wordErrs += e.WordErrors
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Evaluations: %d", len(evaluations)),
		fmt.Sprintf("Avg Accuracy: %.2f%%", float64(totalAcc)/float64(len(evaluations))),
		fmt.Sprintf("Best Accuracy: %d%%", best),
		fmt.Sprintf("Words: %d (correct %d)", words, correct),
		fmt.Sprintf("Letter errors: %d", letters),
		fmt.Sprintf("Punctuation errors: %d", punct),
		fmt.Sprintf("Case errors: %d", cases),
		fmt.Sprintf("Word errors: %d", wordErrs),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderAccuracyCurve prints the smoothed accuracy history as a sparkline and a chart.
func RenderAccuracyCurve(w io.Writer, evaluations []model.EvaluationAggregate, window, width int, useColor bool) error {
	if len(evaluations) == 0 {
		return nil
	}
	accs := make([]float64, len(evaluations))
	wordAccs := make([]float64, len(evaluations))
	for i, e := range evaluations {
		accs[i] = float64(e.Accuracy)
		if e.TotalWords > 0 {
			wordAccs[i] = float64(e.CorrectWords) / float64(e.TotalWords) * 100
		}
	}
	accs = MovingAverage(accs, window)
	wordAccs = MovingAverage(wordAccs, window)

	if _, err := fmt.Fprintf(w, "Accuracy trend: [%s] %.1f%% -> %.1f%%\n", Sparkline(accs), accs[0], accs[len(accs)-1]); err != nil {
		return err
	}
	return PlotSeries(w, "Learning Curve", []Series{
		{Name: "Accuracy", Values: accs},
		{Name: "Correct words", Values: wordAccs},
	}, PlotWidthFor(width), 0, useColor)
}

// RenderLetterTable prints per-letter aggregates, lowest accuracy first.
func RenderLetterTable(w io.Writer, aggs []model.LetterAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No letter stats found.")
		return err
	}
	rows := make([]model.LetterAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := accuracy(rows[i]), accuracy(rows[j])
		if ai == aj {
			return rows[i].Letter < rows[j].Letter
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Letter (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Letter", "Accuracy", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Letter,
			fmt.Sprintf("%.2f%%", accuracy(r)*100),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	return writeTable(w, headers, tableRows, map[int]bool{1: true, 2: true, 3: true})
}

// RenderWordReport prints the per-word detail of one evaluation.
func RenderWordReport(w io.Writer, metrics dictation.EvaluationMetrics) error {
	if len(metrics.Words) == 0 {
		_, err := fmt.Fprintln(w, "No words to report.")
		return err
	}
	headers := []string{"#", "Reference", "Typed", "Status", "Errors", "Punctuation", "Case"}
	rows := make([][]string, 0, len(metrics.Words))
	for i, word := range metrics.Words {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			orDash(word.Reference),
			orDash(word.Student),
			word.Status.String(),
			describeErrors(word),
			word.Punctuation.String(),
			word.Case.String(),
		})
	}
	if err := writeTable(w, headers, rows, map[int]bool{0: true}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Accuracy: %d%%\n", metrics.AccuracyPercentage)
	return err
}

func describeErrors(word dictation.WordAnalysisResult) string {
	parts := make([]string, 0, len(word.Errors))
	for _, kind := range word.Errors {
		if kind == dictation.Correct {
			continue
		}
		if kind.IsLetterError() {
			parts = append(parts, fmt.Sprintf("%s(%s)", kind, letterPositions(word.Letters, kind)))
			continue
		}
		parts = append(parts, kind.String())
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func letterPositions(letters []dictation.LetterDetail, kind dictation.ErrorType) string {
	var parts []string
	for _, detail := range letters {
		if detail.Kind != kind {
			continue
		}
		parts = append(parts, orDash(detail.ReferenceChar)+">"+orDash(detail.StudentChar))
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
