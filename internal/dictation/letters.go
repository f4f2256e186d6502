package dictation

import "slices"

// AnalyzeWord diffs two words letter by letter.
//
// Both words are normalized first, so only letters and digits take part.
// Adjacent swapped letters are reported as a pair of TranspositionLetter
// entries instead of two substitutions. The result runs left to right.
func AnalyzeWord(reference, student string) []LetterDetail {
	ref := []rune(NormalizeWord(reference))
	stu := []rune(NormalizeWord(student))
	n, m := len(ref), len(stu)

	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := 1
			if ref[i-1] == stu[j-1] {
				sub = 0
			}
			best := min(d[i-1][j-1]+sub, d[i-1][j]+1, d[i][j-1]+1)
			if transposed(ref, stu, i, j) {
				best = min(best, d[i-2][j-2]+1)
			}
			d[i][j] = best
		}
	}

	details := make([]LetterDetail, 0, max(n, m))
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == stu[j-1] && d[i][j] == d[i-1][j-1]:
			details = append(details, LetterDetail{
				Position:      i - 1,
				ReferenceChar: string(ref[i-1]),
				StudentChar:   string(stu[j-1]),
				Kind:          Correct,
			})
			i--
			j--
		case transposed(ref, stu, i, j) && d[i][j] == d[i-2][j-2]+1:
			// Appended right to left; the final reverse restores order.
			details = append(details,
				LetterDetail{
					Position:      i - 1,
					ReferenceChar: string(ref[i-1]),
					StudentChar:   string(stu[j-1]),
					Kind:          TranspositionLetter,
				},
				LetterDetail{
					Position:      i - 2,
					ReferenceChar: string(ref[i-2]),
					StudentChar:   string(stu[j-2]),
					Kind:          TranspositionLetter,
				},
			)
			i -= 2
			j -= 2
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			details = append(details, LetterDetail{
				Position:      i - 1,
				ReferenceChar: string(ref[i-1]),
				StudentChar:   string(stu[j-1]),
				Kind:          SubstitutionLetter,
			})
			i--
			j--
		case i > 0 && d[i][j] == d[i-1][j]+1:
			details = append(details, LetterDetail{
				Position:      i - 1,
				ReferenceChar: string(ref[i-1]),
				Kind:          OmissionLetter,
			})
			i--
		default:
			details = append(details, LetterDetail{
				Position:    -1,
				StudentChar: string(stu[j-1]),
				Kind:        InsertionLetter,
			})
			j--
		}
	}
	slices.Reverse(details)
	return details
}

// CountLetterErrors returns the number of non-correct entries.
func CountLetterErrors(details []LetterDetail) int {
	count := 0
	for _, detail := range details {
		if detail.Kind != Correct {
			count++
		}
	}
	return count
}

func transposed(ref, stu []rune, i, j int) bool {
	if i < 2 || j < 2 {
		return false
	}
	return ref[i-1] != ref[i-2] && ref[i-1] == stu[j-2] && ref[i-2] == stu[j-1]
}
