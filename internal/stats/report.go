package stats

import (
	"context"

	"github.com/verte-zerg/ditado/internal/model"
	"github.com/verte-zerg/ditado/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Evaluations         []model.EvaluationAggregate
	WindowEvaluationIDs []int64
	LetterAggsAll       []model.LetterAggregate
	LetterAggsWindow    []model.LetterAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	evaluations, err := st.ListEvaluations(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	windowIDs := lastEvaluationIDs(evaluations, cfg.CurveWindow)
	letterAggsAll, err := st.ListLetterAggregates(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	letterAggsWindow, err := st.ListLetterAggregatesForEvaluations(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Evaluations:         evaluations,
		WindowEvaluationIDs: windowIDs,
		LetterAggsAll:       letterAggsAll,
		LetterAggsWindow:    letterAggsWindow,
	}, nil
}

func evaluationIDs(evaluations []model.EvaluationAggregate) []int64 {
	ids := make([]int64, len(evaluations))
	for i, e := range evaluations {
		ids[i] = e.EvaluationID
	}
	return ids
}

func lastEvaluationIDs(evaluations []model.EvaluationAggregate, window int) []int64 {
	if window <= 0 || len(evaluations) <= window {
		return evaluationIDs(evaluations)
	}
	return evaluationIDs(evaluations[len(evaluations)-window:])
}
