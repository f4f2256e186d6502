// Package dictation evaluates a student's dictation transcription against a reference sentence.
package dictation

import "fmt"

// ErrorType classifies a discrepancy at letter or word level.
type ErrorType int

const (
	Correct ErrorType = iota
	OmissionLetter
	InsertionLetter
	SubstitutionLetter
	TranspositionLetter
	SplitWordError
	MergeWordError
	SubstitutionWord
	MissingWord
	ExtraWord
)

var errorTypeNames = [...]string{
	Correct:             "correct",
	OmissionLetter:      "omission_letter",
	InsertionLetter:     "insertion_letter",
	SubstitutionLetter:  "substitution_letter",
	TranspositionLetter: "transposition_letter",
	SplitWordError:      "split_word",
	MergeWordError:      "merge_word",
	SubstitutionWord:    "substitution_word",
	MissingWord:         "missing_word",
	ExtraWord:           "extra_word",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
	return errorTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t ErrorType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return nil, fmt.Errorf("unknown error type %d", int(t))
	}
	return []byte(errorTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ErrorType) UnmarshalText(text []byte) error {
	for i, name := range errorTypeNames {
		if name == string(text) {
			*t = ErrorType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown error type %q", text)
}

// IsLetterError reports whether t is one of the letter-level error kinds.
func (t ErrorType) IsLetterError() bool {
	switch t {
	case OmissionLetter, InsertionLetter, SubstitutionLetter, TranspositionLetter:
		return true
	default:
		return false
	}
}

// WordStatus is the overall verdict for one aligned word.
type WordStatus int

const (
	StatusCorrect WordStatus = iota
	StatusWrong
	StatusMissing
	StatusExtra
)

var wordStatusNames = [...]string{
	StatusCorrect: "correct",
	StatusWrong:   "wrong",
	StatusMissing: "missing",
	StatusExtra:   "extra",
}

func (s WordStatus) String() string {
	if s < 0 || int(s) >= len(wordStatusNames) {
		return fmt.Sprintf("WordStatus(%d)", int(s))
	}
	return wordStatusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s WordStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(wordStatusNames) {
		return nil, fmt.Errorf("unknown word status %d", int(s))
	}
	return []byte(wordStatusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *WordStatus) UnmarshalText(text []byte) error {
	for i, name := range wordStatusNames {
		if name == string(text) {
			*s = WordStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown word status %q", text)
}

// PunctuationError describes a trailing punctuation mismatch.
type PunctuationError int

const (
	PunctuationNone PunctuationError = iota
	PunctuationMissing
	PunctuationWrongSymbol
	PunctuationInserted
)

var punctuationNames = [...]string{
	PunctuationNone:        "none",
	PunctuationMissing:     "missing",
	PunctuationWrongSymbol: "wrong_symbol",
	PunctuationInserted:    "inserted",
}

func (p PunctuationError) String() string {
	if p < 0 || int(p) >= len(punctuationNames) {
		return fmt.Sprintf("PunctuationError(%d)", int(p))
	}
	return punctuationNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p PunctuationError) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(punctuationNames) {
		return nil, fmt.Errorf("unknown punctuation error %d", int(p))
	}
	return []byte(punctuationNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PunctuationError) UnmarshalText(text []byte) error {
	for i, name := range punctuationNames {
		if name == string(text) {
			*p = PunctuationError(i)
			return nil
		}
	}
	return fmt.Errorf("unknown punctuation error %q", text)
}

// CaseError describes a leading capitalization mismatch.
type CaseError int

const (
	CaseNone CaseError = iota
	CaseMissingCap
	CaseWrongCap
)

var caseNames = [...]string{
	CaseNone:       "none",
	CaseMissingCap: "missing_cap",
	CaseWrongCap:   "wrong_cap",
}

func (c CaseError) String() string {
	if c < 0 || int(c) >= len(caseNames) {
		return fmt.Sprintf("CaseError(%d)", int(c))
	}
	return caseNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c CaseError) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(caseNames) {
		return nil, fmt.Errorf("unknown case error %d", int(c))
	}
	return []byte(caseNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CaseError) UnmarshalText(text []byte) error {
	for i, name := range caseNames {
		if name == string(text) {
			*c = CaseError(i)
			return nil
		}
	}
	return fmt.Errorf("unknown case error %q", text)
}

// AlignedPair is one unit of correspondence between reference and student words.
// An empty Reference marks an extra student word, an empty Student a missing one.
// Joined and split pairs hold both source tokens separated by a single space.
type AlignedPair struct {
	Reference string
	Student   string
	IsJoin    bool
	IsSplit   bool
}

// HasReference reports whether the pair carries a reference word.
func (p AlignedPair) HasReference() bool {
	return p.Reference != ""
}

// HasStudent reports whether the pair carries a student word.
func (p AlignedPair) HasStudent() bool {
	return p.Student != ""
}

// LetterDetail is one letter-level operation inside a word pair.
// Position is the reference index, or -1 for a pure insertion.
// Absent characters are empty strings.
type LetterDetail struct {
	Position      int       `json:"position"`
	ReferenceChar string    `json:"referenceChar,omitempty"`
	StudentChar   string    `json:"studentChar,omitempty"`
	Kind          ErrorType `json:"kind"`
}

// WordAnalysisResult is the verdict for one aligned pair.
type WordAnalysisResult struct {
	Reference           string           `json:"reference,omitempty"`
	Student             string           `json:"student,omitempty"`
	NormalizedReference string           `json:"normalizedReference,omitempty"`
	NormalizedStudent   string           `json:"normalizedStudent,omitempty"`
	Status              WordStatus       `json:"status"`
	Letters             []LetterDetail   `json:"letters,omitempty"`
	Errors              []ErrorType      `json:"errors"`
	Punctuation         PunctuationError `json:"punctuation"`
	Case                CaseError        `json:"case"`
}

// HasError reports whether the word carries the given tag.
func (w WordAnalysisResult) HasError(kind ErrorType) bool {
	for _, e := range w.Errors {
		if e == kind {
			return true
		}
	}
	return false
}

// EvaluationMetrics is the full outcome of one evaluation.
type EvaluationMetrics struct {
	TotalWords           int                  `json:"totalWords"`
	CorrectWords         int                  `json:"correctWords"`
	OmittedWords         int                  `json:"omittedWords"`
	ExtraWords           int                  `json:"extraWords"`
	OmissionLetters      int                  `json:"omissionLetters"`
	InsertionLetters     int                  `json:"insertionLetters"`
	SubstitutionLetters  int                  `json:"substitutionLetters"`
	TranspositionLetters int                  `json:"transpositionLetters"`
	PunctuationErrors    int                  `json:"punctuationErrors"`
	CaseErrors           int                  `json:"caseErrors"`
	MergeWords           int                  `json:"mergeWords"`
	SplitWords           int                  `json:"splitWords"`
	SubstitutionWords    int                  `json:"substitutionWords"`
	Words                []WordAnalysisResult `json:"words"`
	AccuracyPercentage   int                  `json:"accuracyPercentage"`
}

// LetterErrors returns the total number of letter-level errors.
func (m EvaluationMetrics) LetterErrors() int {
	return m.OmissionLetters + m.InsertionLetters + m.SubstitutionLetters + m.TranspositionLetters
}
