package dictation

// Evaluate compares a student's transcription with the reference sentence.
//
// The words are aligned once, each aligned pair is classified, the counts are
// aggregated and the accuracy is attached. Evaluate holds no state between
// calls and is safe for concurrent use.
func Evaluate(referenceText, studentText string) EvaluationMetrics {
	pairs := Align(referenceText, studentText)
	metrics := EvaluationMetrics{
		TotalWords: len(Tokenize(referenceText)),
		Words:      make([]WordAnalysisResult, 0, len(pairs)),
	}
	for _, pair := range pairs {
		metrics.add(classifyPair(pair))
	}

	// Nothing dictated and nothing typed is treated as a trivially perfect exercise.
	if metrics.TotalWords == 0 && len(metrics.Words) == 0 {
		metrics.AccuracyPercentage = emptyDictationScore
		return metrics
	}
	metrics.AccuracyPercentage = Score(metrics)
	return metrics
}

func classifyPair(pair AlignedPair) WordAnalysisResult {
	word := WordAnalysisResult{
		Reference:           pair.Reference,
		Student:             pair.Student,
		NormalizedReference: NormalizeWord(pair.Reference),
		NormalizedStudent:   NormalizeWord(pair.Student),
	}
	switch {
	case !pair.HasReference():
		word.Status = StatusExtra
		word.Errors = []ErrorType{ExtraWord}
		return word
	case !pair.HasStudent():
		word.Status = StatusMissing
		word.Errors = []ErrorType{MissingWord}
		return word
	}

	word.Punctuation, word.Case = AnalyzePunctuationAndCase(pair.Reference, pair.Student)

	if pair.IsJoin || pair.IsSplit {
		word.Status = StatusWrong
		if pair.IsJoin {
			word.Errors = append(word.Errors, MergeWordError)
		}
		if pair.IsSplit {
			word.Errors = append(word.Errors, SplitWordError)
		}
		return word
	}

	letters := AnalyzeWord(pair.Reference, pair.Student)
	if CountLetterErrors(letters) > wordSubstitutionThreshold {
		word.Status = StatusWrong
		word.Errors = []ErrorType{SubstitutionWord}
		return word
	}
	word.Letters = letters
	word.Errors = letterTags(letters)
	if len(word.Errors) == 0 {
		word.Status = StatusCorrect
		word.Errors = []ErrorType{Correct}
		return word
	}
	word.Status = StatusWrong
	return word
}

// letterTags lists the distinct letter error kinds in order of first appearance.
func letterTags(letters []LetterDetail) []ErrorType {
	var tags []ErrorType
	seen := map[ErrorType]bool{}
	for _, detail := range letters {
		if detail.Kind == Correct || seen[detail.Kind] {
			continue
		}
		seen[detail.Kind] = true
		tags = append(tags, detail.Kind)
	}
	return tags
}

func (m *EvaluationMetrics) add(word WordAnalysisResult) {
	switch word.Status {
	case StatusCorrect:
		m.CorrectWords++
	case StatusMissing:
		m.OmittedWords++
	case StatusExtra:
		m.ExtraWords++
	}
	if word.Punctuation != PunctuationNone {
		m.PunctuationErrors++
	}
	if word.Case != CaseNone {
		m.CaseErrors++
	}
	for _, detail := range word.Letters {
		switch detail.Kind {
		case OmissionLetter:
			m.OmissionLetters++
		case InsertionLetter:
			m.InsertionLetters++
		case SubstitutionLetter:
			m.SubstitutionLetters++
		case TranspositionLetter:
			m.TranspositionLetters++
		}
	}
	for _, tag := range word.Errors {
		switch tag {
		case MergeWordError:
			m.MergeWords++
		case SplitWordError:
			m.SplitWords++
		case SubstitutionWord:
			m.SubstitutionWords++
		}
	}
	m.Words = append(m.Words, word)
}
