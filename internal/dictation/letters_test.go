package dictation

import "testing"

func TestAnalyzeWordTransposition(t *testing.T) {
	details := AnalyzeWord("aluno", "alnuo")
	if len(details) != 5 {
		t.Fatalf("expected 5 details, got %d: %+v", len(details), details)
	}
	var swapped []LetterDetail
	for _, d := range details {
		switch d.Kind {
		case TranspositionLetter:
			swapped = append(swapped, d)
		case Correct:
		default:
			t.Fatalf("unexpected %s entry: %+v", d.Kind, d)
		}
	}
	if len(swapped) != 2 {
		t.Fatalf("expected 2 transposition entries, got %d", len(swapped))
	}
	if swapped[0].Position != 2 || swapped[0].ReferenceChar != "u" || swapped[0].StudentChar != "n" {
		t.Fatalf("unexpected first transposition: %+v", swapped[0])
	}
	if swapped[1].Position != 3 || swapped[1].ReferenceChar != "n" || swapped[1].StudentChar != "u" {
		t.Fatalf("unexpected second transposition: %+v", swapped[1])
	}
}

func TestAnalyzeWordInsertion(t *testing.T) {
	details := AnalyzeWord("gato", "gatto")
	if got := CountLetterErrors(details); got != 1 {
		t.Fatalf("expected 1 letter error, got %d: %+v", got, details)
	}
	for _, d := range details {
		if d.Kind == InsertionLetter {
			if d.Position != -1 || d.ReferenceChar != "" || d.StudentChar != "t" {
				t.Fatalf("unexpected insertion entry: %+v", d)
			}
			return
		}
	}
	t.Fatalf("expected an insertion entry in %+v", details)
}

func TestAnalyzeWordSingleErrors(t *testing.T) {
	tests := []struct {
		name     string
		ref, stu string
		kind     ErrorType
		position int
		refChar  string
		stuChar  string
	}{
		{name: "omission", ref: "casa", stu: "cas", kind: OmissionLetter, position: 3, refChar: "a"},
		{name: "substitution", ref: "pato", stu: "bato", kind: SubstitutionLetter, position: 0, refChar: "p", stuChar: "b"},
		{name: "accent", ref: "está", stu: "esta", kind: SubstitutionLetter, position: 3, refChar: "á", stuChar: "a"},
		{name: "case_and_punct_ignored", ref: "Pato.", stu: "bato", kind: SubstitutionLetter, position: 0, refChar: "p", stuChar: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := AnalyzeWord(tt.ref, tt.stu)
			if got := CountLetterErrors(details); got != 1 {
				t.Fatalf("expected 1 letter error, got %d: %+v", got, details)
			}
			for _, d := range details {
				if d.Kind == Correct {
					continue
				}
				if d.Kind != tt.kind || d.Position != tt.position || d.ReferenceChar != tt.refChar || d.StudentChar != tt.stuChar {
					t.Fatalf("unexpected entry: %+v", d)
				}
			}
		})
	}
}

func TestAnalyzeWordIdentical(t *testing.T) {
	details := AnalyzeWord("coração", "Coração,")
	if len(details) != 7 {
		t.Fatalf("expected 7 details, got %d", len(details))
	}
	for i, d := range details {
		if d.Kind != Correct || d.Position != i {
			t.Fatalf("detail %d: %+v", i, d)
		}
	}
}

func TestAnalyzeWordEmptyNormalizedForms(t *testing.T) {
	if details := AnalyzeWord("—", "..."); len(details) != 0 {
		t.Fatalf("expected no details, got %+v", details)
	}
	details := AnalyzeWord("—", "casa")
	if len(details) != 4 {
		t.Fatalf("expected 4 insertions, got %+v", details)
	}
	for _, d := range details {
		if d.Kind != InsertionLetter || d.Position != -1 {
			t.Fatalf("expected insertion, got %+v", d)
		}
	}
}

func TestAnalyzeWordOrdering(t *testing.T) {
	details := AnalyzeWord("bola", "bla")
	if len(details) != 4 {
		t.Fatalf("expected 4 details, got %+v", details)
	}
	for i, d := range details {
		if d.Position != i {
			t.Fatalf("expected ascending positions, got %+v", details)
		}
	}
	if details[1].Kind != OmissionLetter || details[1].StudentChar != "" {
		t.Fatalf("expected omission of o, got %+v", details[1])
	}
}
