package dictation

import (
	"unicode"
	"unicode/utf8"
)

// AnalyzePunctuationAndCase compares the raw forms of two words.
// Only the first rune (capitalization) and the last rune (trailing
// punctuation) are inspected, independently of letter correctness.
func AnalyzePunctuationAndCase(reference, student string) (PunctuationError, CaseError) {
	return punctuationError(reference, student), caseError(reference, student)
}

func caseError(reference, student string) CaseError {
	refCap := startsCapitalized(reference)
	stuCap := startsCapitalized(student)
	switch {
	case refCap && !stuCap:
		return CaseMissingCap
	case !refCap && stuCap:
		return CaseWrongCap
	default:
		return CaseNone
	}
}

func punctuationError(reference, student string) PunctuationError {
	refLast, refOK := lastRune(reference)
	stuLast, stuOK := lastRune(student)
	if !refOK || !stuOK {
		return PunctuationNone
	}
	refPunct := !IsLetter(refLast)
	stuPunct := !IsLetter(stuLast)
	switch {
	case refPunct && !stuPunct:
		return PunctuationMissing
	case refPunct && stuPunct && refLast != stuLast:
		return PunctuationWrongSymbol
	case !refPunct && stuPunct:
		return PunctuationInserted
	default:
		return PunctuationNone
	}
}

func startsCapitalized(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return false
	}
	return unicode.IsLetter(r) && unicode.IsUpper(r)
}

func lastRune(word string) (rune, bool) {
	r, size := utf8.DecodeLastRuneInString(word)
	return r, size > 0
}
