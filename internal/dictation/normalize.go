package dictation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// IsLetter reports whether r counts as word content rather than punctuation.
// Digits are kept so that numbers in a dictation compare like words.
func IsLetter(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokenize splits text on runs of whitespace.
func Tokenize(text string) []string {
	return strings.Fields(norm.NFC.String(text))
}

// NormalizeWord folds case and drops everything that is not a letter or digit.
// Accented letters are composed first so both Unicode spellings of "é" compare equal.
func NormalizeWord(word string) string {
	word = norm.NFC.String(word)
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if !IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
