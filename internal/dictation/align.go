package dictation

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

type alignStep int

const (
	stepMatch alignStep = iota
	stepDelete
	stepInsert
	stepJoin
	stepSplit
)

// Align pairs the reference words with the student words.
//
// The table cost[i][j] holds the cheapest way to align the first i reference
// words with the first j student words. Besides match/substitute, delete and
// insert, two structural moves are allowed: a join (two reference words typed
// as one token) and a split (one reference word typed as two tokens). Both are
// free so that a structural explanation always beats a substitution.
func Align(referenceText, studentText string) []AlignedPair {
	ref := Tokenize(referenceText)
	stu := Tokenize(studentText)
	if len(ref) == 0 || len(stu) == 0 {
		return degenerateAlignment(ref, stu)
	}

	refNorm := normalizeAll(ref)
	stuNorm := normalizeAll(stu)
	n, m := len(ref), len(stu)

	cost := make([][]float64, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		cost[i][0] = float64(i) * deleteCost
	}
	for j := 0; j <= m; j++ {
		cost[0][j] = float64(j) * insertCost
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			best := cost[i-1][j-1] + substitutionCost(refNorm[i-1], stuNorm[j-1])
			best = math.Min(best, cost[i-1][j]+deleteCost)
			best = math.Min(best, cost[i][j-1]+insertCost)
			if joins(refNorm, stuNorm, i, j) {
				best = math.Min(best, cost[i-2][j-1]+structuralCost)
			}
			if splits(refNorm, stuNorm, i, j) {
				best = math.Min(best, cost[i-1][j-2]+structuralCost)
			}
			cost[i][j] = best
		}
	}

	pairs := make([]AlignedPair, 0, max(n, m))
	i, j := n, m
	for i > 0 || j > 0 {
		switch traceStep(cost, refNorm, stuNorm, i, j) {
		case stepMatch:
			pairs = append(pairs, AlignedPair{Reference: ref[i-1], Student: stu[j-1]})
			i--
			j--
		case stepDelete:
			pairs = append(pairs, AlignedPair{Reference: ref[i-1]})
			i--
		case stepInsert:
			pairs = append(pairs, AlignedPair{Student: stu[j-1]})
			j--
		case stepJoin:
			pairs = append(pairs, AlignedPair{
				Reference: ref[i-2] + " " + ref[i-1],
				Student:   stu[j-1],
				IsJoin:    true,
			})
			i -= 2
			j--
		case stepSplit:
			pairs = append(pairs, AlignedPair{
				Reference: ref[i-1],
				Student:   stu[j-2] + " " + stu[j-1],
				IsSplit:   true,
			})
			i--
			j -= 2
		}
	}
	slices.Reverse(pairs)
	return pairs
}

// traceStep finds which transition produced cost[i][j].
// Ties resolve in the order match, delete, insert, join, split.
func traceStep(cost [][]float64, refNorm, stuNorm []string, i, j int) alignStep {
	if i == 0 {
		return stepInsert
	}
	if j == 0 {
		return stepDelete
	}
	cur := cost[i][j]
	switch {
	case sameCost(cur, cost[i-1][j-1]+substitutionCost(refNorm[i-1], stuNorm[j-1])):
		return stepMatch
	case sameCost(cur, cost[i-1][j]+deleteCost):
		return stepDelete
	case sameCost(cur, cost[i][j-1]+insertCost):
		return stepInsert
	case joins(refNorm, stuNorm, i, j) && sameCost(cur, cost[i-2][j-1]+structuralCost):
		return stepJoin
	case splits(refNorm, stuNorm, i, j) && sameCost(cur, cost[i-1][j-2]+structuralCost):
		return stepSplit
	}
	return stepMatch
}

// substitutionCost prices aligning two normalized words against each other.
// Even dissimilar words stay cheaper than a delete plus an insert.
func substitutionCost(ref, stu string) float64 {
	if ref == stu {
		return matchCost
	}
	limit := similarMaxEdits
	if utf8.RuneCountInString(ref) >= longWordMinLength {
		limit = longWordMaxEdits
	}
	if matchr.Levenshtein(ref, stu) <= limit {
		return similarWordCost
	}
	return dissimilarCost
}

// joins reports whether reference words i-2 and i-1 concatenate to student word j-1.
// A punctuation-only token normalizes to "" and therefore joins its neighbour.
func joins(refNorm, stuNorm []string, i, j int) bool {
	if i < 2 || j < 1 {
		return false
	}
	return refNorm[i-2]+refNorm[i-1] == stuNorm[j-1]
}

// splits reports whether student words j-2 and j-1 concatenate to reference word i-1.
func splits(refNorm, stuNorm []string, i, j int) bool {
	if j < 2 || i < 1 {
		return false
	}
	return stuNorm[j-2]+stuNorm[j-1] == refNorm[i-1]
}

func degenerateAlignment(ref, stu []string) []AlignedPair {
	pairs := make([]AlignedPair, 0, len(ref)+len(stu))
	for _, word := range ref {
		pairs = append(pairs, AlignedPair{Reference: word})
	}
	for _, word := range stu {
		pairs = append(pairs, AlignedPair{Student: word})
	}
	return pairs
}

func normalizeAll(words []string) []string {
	out := make([]string, len(words))
	for i, word := range words {
		out[i] = NormalizeWord(word)
	}
	return out
}

func sameCost(a, b float64) bool {
	return math.Abs(a-b) < costEpsilon
}
