package dictation

import (
	"math"
	"unicode/utf8"
)

// Score reduces an evaluation into an accuracy percentage in [0, 100].
//
// Every reference word is worth n = 95/totalWords points (rounded to three
// decimals). Each punctuation error costs a flat 5 points. A word's own
// penalty never exceeds n; missing and extra words cost exactly n.
func Score(metrics EvaluationMetrics) int {
	if metrics.TotalWords == 0 {
		return 0
	}
	n := wordUnit(metrics.TotalWords)

	score := maxScore
	score -= punctuationPenalty * float64(metrics.PunctuationErrors)
	for _, word := range metrics.Words {
		if word.Status == StatusMissing || word.Status == StatusExtra {
			continue
		}
		score -= wordPenalty(word, n)
	}
	score -= n * float64(metrics.OmittedWords+metrics.ExtraWords)

	score = math.Max(minScore, math.Min(maxScore, score))
	return int(math.Round(score))
}

func wordUnit(totalWords int) float64 {
	return math.Round(wordBudget/float64(totalWords)*unitDecimals) / unitDecimals
}

func wordPenalty(word WordAnalysisResult, n float64) float64 {
	if word.HasError(SubstitutionWord) {
		return n
	}
	penalty := 0.0
	if word.Case != CaseNone {
		penalty += caseFactor * n
	}
	units := 0
	for _, detail := range word.Letters {
		if detail.Kind.IsLetterError() {
			units++
		}
	}
	if word.HasError(MergeWordError) {
		units++
	}
	if word.HasError(SplitWordError) {
		units++
	}
	rate := longWordRateFactor * n
	if utf8.RuneCountInString(word.NormalizedReference) <= shortWordMaxLength {
		rate = n
	}
	penalty += float64(units) * rate
	return math.Min(penalty, n)
}
