package dictation

import "testing"

func TestScoreNoWords(t *testing.T) {
	if got := Score(EvaluationMetrics{}); got != 0 {
		t.Fatalf("expected 0 for empty metrics, got %d", got)
	}
}

func TestWordUnitRounding(t *testing.T) {
	tests := []struct {
		words int
		want  float64
	}{
		{words: 1, want: 95},
		{words: 3, want: 31.667},
		{words: 7, want: 13.571},
	}
	for _, tt := range tests {
		if got := wordUnit(tt.words); got != tt.want {
			t.Fatalf("wordUnit(%d) = %v, want %v", tt.words, got, tt.want)
		}
	}
}

func TestScoreRubric(t *testing.T) {
	tests := []struct {
		name    string
		metrics EvaluationMetrics
		want    int
	}{
		{
			name: "perfect",
			metrics: EvaluationMetrics{
				TotalWords: 2,
				Words: []WordAnalysisResult{
					{NormalizedReference: "gato", Status: StatusCorrect},
					{NormalizedReference: "dorme", Status: StatusCorrect},
				},
			},
			want: 100,
		},
		{
			name: "long_word_letter_error_and_missing_punct",
			metrics: EvaluationMetrics{
				TotalWords:        3,
				PunctuationErrors: 1,
				Words: []WordAnalysisResult{
					{NormalizedReference: "o", Status: StatusCorrect},
					{
						NormalizedReference: "gato",
						Status:              StatusWrong,
						Letters:             []LetterDetail{{Position: -1, StudentChar: "t", Kind: InsertionLetter}},
						Errors:              []ErrorType{InsertionLetter},
					},
					{NormalizedReference: "dorme", Status: StatusCorrect, Punctuation: PunctuationMissing},
				},
			},
			want: 82,
		},
		{
			name: "short_word_costs_full_unit",
			metrics: EvaluationMetrics{
				TotalWords: 3,
				Words: []WordAnalysisResult{
					{NormalizedReference: "o", Status: StatusCorrect},
					{
						NormalizedReference: "sol",
						Status:              StatusWrong,
						Letters:             []LetterDetail{{Position: 1, ReferenceChar: "o", StudentChar: "a", Kind: SubstitutionLetter}},
						Errors:              []ErrorType{SubstitutionLetter},
					},
					{NormalizedReference: "brilha", Status: StatusCorrect},
				},
			},
			want: 68,
		},
		{
			name: "penalty_capped_at_unit",
			metrics: EvaluationMetrics{
				TotalWords: 2,
				Words: []WordAnalysisResult{
					{
						NormalizedReference: "pa",
						Status:              StatusWrong,
						Case:                CaseMissingCap,
						Letters: []LetterDetail{
							{Position: 0, ReferenceChar: "p", StudentChar: "b", Kind: SubstitutionLetter},
							{Position: 1, ReferenceChar: "a", StudentChar: "e", Kind: SubstitutionLetter},
						},
						Errors: []ErrorType{SubstitutionLetter},
					},
					{NormalizedReference: "casa", Status: StatusCorrect},
				},
			},
			want: 53,
		},
		{
			name: "case_only",
			metrics: EvaluationMetrics{
				TotalWords: 2,
				Words: []WordAnalysisResult{
					{NormalizedReference: "maria", Status: StatusCorrect, Case: CaseMissingCap},
					{NormalizedReference: "canta", Status: StatusCorrect},
				},
			},
			want: 95,
		},
		{
			name: "substitution_word",
			metrics: EvaluationMetrics{
				TotalWords:        3,
				SubstitutionWords: 1,
				Words: []WordAnalysisResult{
					{NormalizedReference: "o", Status: StatusCorrect},
					{NormalizedReference: "cachorro", Status: StatusWrong, Errors: []ErrorType{SubstitutionWord}},
					{NormalizedReference: "late", Status: StatusCorrect},
				},
			},
			want: 68,
		},
		{
			name: "missing_and_extra_words",
			metrics: EvaluationMetrics{
				TotalWords:   2,
				OmittedWords: 1,
				ExtraWords:   1,
				Words: []WordAnalysisResult{
					{NormalizedReference: "gato", Status: StatusMissing, Errors: []ErrorType{MissingWord}},
					{NormalizedReference: "dorme", Status: StatusCorrect},
					{NormalizedStudent: "muito", Status: StatusExtra, Errors: []ErrorType{ExtraWord}},
				},
			},
			want: 5,
		},
		{
			name: "clamped_at_zero",
			metrics: EvaluationMetrics{
				TotalWords:        1,
				PunctuationErrors: 2,
				OmittedWords:      1,
				Words: []WordAnalysisResult{
					{NormalizedReference: "fim", Status: StatusMissing, Errors: []ErrorType{MissingWord}},
				},
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.metrics); got != tt.want {
				t.Fatalf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}
