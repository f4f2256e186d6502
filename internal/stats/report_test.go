package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/ditado/internal/dictation"
	"github.com/verte-zerg/ditado/internal/model"
	"github.com/verte-zerg/ditado/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "ditado.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	typed := []string{"O sal brilha.", "O sol brilha", "O sol brilha."}
	var ids []int64
	for i, text := range typed {
		metrics := dictation.Evaluate("O sol brilha.", text)
		rec, err := RecordFromMetrics(metrics, "ana", "sol-1", "O sol brilha.", text, time.Unix(0, 0).Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		id, err := st.InsertEvaluation(ctx, rec, LetterStatsFromMetrics(metrics))
		if err != nil {
			t.Fatalf("insert evaluation: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Student: "ana", Last: 2, CurveWindow: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Evaluations) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(report.Evaluations))
	}
	if report.Evaluations[0].EvaluationID != ids[1] || report.Evaluations[1].EvaluationID != ids[2] {
		t.Fatalf("unexpected evaluation ids: %+v", report.Evaluations)
	}
	if len(report.WindowEvaluationIDs) != 1 || report.WindowEvaluationIDs[0] != ids[2] {
		t.Fatalf("unexpected window ids: %v", report.WindowEvaluationIDs)
	}
	if len(report.LetterAggsAll) == 0 || len(report.LetterAggsWindow) == 0 {
		t.Fatalf("expected letter aggregates")
	}
	for _, agg := range report.LetterAggsAll {
		if agg.Incorrect != 0 {
			t.Fatalf("the first evaluation is outside Last and must not contribute: %+v", agg)
		}
	}
}
