// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	ExercisesPath string
	Level         int
	Student       string
	FocusWeak     bool
	WeakTop       int
	WeakFactor    float64
	WeakWindow    int
	// PreviewSeconds is how long a new sentence stays visible; 0 keeps it hidden.
	PreviewSeconds int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Student     string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Exercise is one authored dictation sentence.
type Exercise struct {
	ID    string `toml:"id" yaml:"id"`
	Level int    `toml:"level" yaml:"level"`
	Text  string `toml:"text" yaml:"text"`
}

// EvaluationRecord is the flattened row persisted for one evaluation.
type EvaluationRecord struct {
	ID                   int64
	CreatedAt            time.Time
	Student              string
	ExerciseID           string
	ReferenceText        string
	StudentText          string
	TotalWords           int
	CorrectWords         int
	OmittedWords         int
	ExtraWords           int
	OmissionLetters      int
	InsertionLetters     int
	SubstitutionLetters  int
	TranspositionLetters int
	PunctuationErrors    int
	CaseErrors           int
	MergeWords           int
	SplitWords           int
	SubstitutionWords    int
	Accuracy             int
	DetailJSON           string
}

// LetterStats stores per-letter outcomes for one evaluation.
type LetterStats struct {
	Letter    string
	Correct   int
	Incorrect int
}

// LetterAggregate aggregates letter stats across evaluations.
type LetterAggregate struct {
	Letter    string
	Correct   int
	Incorrect int
}

// EvaluationAggregate summarizes an evaluation for reporting.
type EvaluationAggregate struct {
	EvaluationID      int64
	CreatedAt         time.Time
	ExerciseID        string
	TotalWords        int
	CorrectWords      int
	LetterErrors      int
	PunctuationErrors int
	CaseErrors        int
	WordErrors        int
	Accuracy          int
}
