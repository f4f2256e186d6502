package dictation

// Alignment costs.
const (
	matchCost         = 0.0
	similarWordCost   = 0.6
	dissimilarCost    = 1.2
	deleteCost        = 1.0
	insertCost        = 1.0
	structuralCost    = 0.0
	similarMaxEdits   = 2
	longWordMaxEdits  = 3
	longWordMinLength = 4
	costEpsilon       = 1e-9
)

// Letter analysis.
const (
	// Words with more non-correct letter operations than this are tagged SubstitutionWord.
	wordSubstitutionThreshold = 2
)

// Scoring rubric.
const (
	maxScore            = 100.0
	minScore            = 0.0
	wordBudget          = 95.0
	unitDecimals        = 1000.0
	punctuationPenalty  = 5.0
	caseFactor          = 0.1
	longWordRateFactor  = 0.4
	shortWordMaxLength  = 3
	emptyDictationScore = 100
)
