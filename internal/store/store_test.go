package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/ditado/internal/dictation"
	"github.com/verte-zerg/ditado/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "ditado.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st
}

func testRecord(t *testing.T, student string, createdAt time.Time, reference, typed string) model.EvaluationRecord {
	t.Helper()
	metrics := dictation.Evaluate(reference, typed)
	detail, err := json.Marshal(metrics)
	if err != nil {
		t.Fatalf("marshal metrics: %v", err)
	}
	return model.EvaluationRecord{
		CreatedAt:         createdAt,
		Student:           student,
		ExerciseID:        "ex-1",
		ReferenceText:     reference,
		StudentText:       typed,
		TotalWords:        metrics.TotalWords,
		CorrectWords:      metrics.CorrectWords,
		OmittedWords:      metrics.OmittedWords,
		ExtraWords:        metrics.ExtraWords,
		InsertionLetters:  metrics.InsertionLetters,
		PunctuationErrors: metrics.PunctuationErrors,
		Accuracy:          metrics.AccuracyPercentage,
		DetailJSON:        string(detail),
	}
}

func TestInsertAndGetEvaluationDetail(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	rec := testRecord(t, "ana", now, "O gato dorme.", "O gatto dorme")
	letters := []model.LetterStats{{Letter: "t", Correct: 1, Incorrect: 1}, {Letter: "g", Correct: 1}}
	id, err := st.InsertEvaluation(ctx, rec, letters)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, metrics, err := st.GetEvaluationDetail(ctx, id)
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if got.ID != id || got.Student != "ana" || got.Accuracy != 82 || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.InsertionLetters != 1 || got.PunctuationErrors != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if len(metrics.Words) != 3 || metrics.Words[1].Status != dictation.StatusWrong {
		t.Fatalf("unexpected decoded detail: %+v", metrics.Words)
	}
}

func TestGetEvaluationNotFound(t *testing.T) {
	st := openTestStore(t)
	if _, _, err := st.GetEvaluationDetail(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEvaluationsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	inputs := []struct {
		student string
		offset  time.Duration
		typed   string
	}{
		{student: "ana", offset: 0, typed: "O gato dorme."},
		{student: "ana", offset: time.Hour, typed: "O gatto dorme"},
		{student: "rui", offset: 2 * time.Hour, typed: "O dorme."},
		{student: "ana", offset: 3 * time.Hour, typed: "O gato dorme"},
	}
	for _, in := range inputs {
		if _, err := st.InsertEvaluation(ctx, testRecord(t, in.student, base.Add(in.offset), "O gato dorme.", in.typed), nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := st.ListEvaluations(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 evaluations, got %d", len(all))
	}
	if !all[0].CreatedAt.Before(all[3].CreatedAt) {
		t.Fatalf("expected oldest first")
	}
	if all[2].WordErrors != 1 {
		t.Fatalf("expected missing word in word errors, got %+v", all[2])
	}
	if all[1].LetterErrors != 1 || all[1].PunctuationErrors != 1 {
		t.Fatalf("unexpected aggregate: %+v", all[1])
	}

	ana, err := st.ListEvaluations(ctx, model.StatsConfig{Student: "ana"})
	if err != nil {
		t.Fatalf("list ana: %v", err)
	}
	if len(ana) != 3 {
		t.Fatalf("expected 3 evaluations for ana, got %d", len(ana))
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListEvaluations(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 evaluations since %s, got %d", since, len(recent))
	}

	last, err := st.ListEvaluations(ctx, model.StatsConfig{Student: "ana", Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[1].Accuracy != ana[2].Accuracy {
		t.Fatalf("expected the two newest evaluations, got %+v", last)
	}
}

func TestLetterAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := st.InsertEvaluation(ctx, testRecord(t, "ana", base, "O gato.", "O gato."),
		[]model.LetterStats{{Letter: "a", Correct: 2}, {Letter: "ç", Incorrect: 1}})
	if err != nil {
		t.Fatalf("insert first: %v", err)
	}
	second, err := st.InsertEvaluation(ctx, testRecord(t, "ana", base.Add(time.Minute), "O gato.", "O gato."),
		[]model.LetterStats{{Letter: "a", Correct: 1, Incorrect: 1}})
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if _, err := st.InsertEvaluation(ctx, testRecord(t, "rui", base.Add(2*time.Minute), "O gato.", "O gato."),
		[]model.LetterStats{{Letter: "a", Incorrect: 5}}); err != nil {
		t.Fatalf("insert third: %v", err)
	}

	aggs, err := st.ListLetterAggregatesForEvaluations(ctx, []int64{first, second})
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	byLetter := map[string]model.LetterAggregate{}
	for _, agg := range aggs {
		byLetter[agg.Letter] = agg
	}
	if a := byLetter["a"]; a.Correct != 3 || a.Incorrect != 1 {
		t.Fatalf("unexpected aggregate for a: %+v", a)
	}
	if c := byLetter["ç"]; c.Incorrect != 1 {
		t.Fatalf("unexpected aggregate for ç: %+v", c)
	}

	weak, err := st.GetWeakLetters(ctx, 1, "ana")
	if err != nil {
		t.Fatalf("weak letters: %v", err)
	}
	if len(weak) != 1 || weak[0].Letter != "a" || weak[0].Incorrect != 1 {
		t.Fatalf("expected only the newest ana evaluation, got %+v", weak)
	}

	none, err := st.GetWeakLetters(ctx, 0, "ana")
	if err != nil || none != nil {
		t.Fatalf("expected nil for empty window, got %+v, %v", none, err)
	}
}

func TestListLetterAggregatesFollowsFilter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	inserts := []struct {
		student string
		letters []model.LetterStats
	}{
		{"ana", []model.LetterStats{{Letter: "a", Correct: 1, Incorrect: 4}}},
		{"ana", []model.LetterStats{{Letter: "a", Correct: 2}, {Letter: "s", Incorrect: 1}}},
		{"rui", []model.LetterStats{{Letter: "a", Incorrect: 9}}},
		{"ana", []model.LetterStats{{Letter: "a", Correct: 3}}},
	}
	for i, in := range inserts {
		rec := testRecord(t, in.student, base.Add(time.Duration(i)*time.Minute), "O gato.", "O gato.")
		if _, err := st.InsertEvaluation(ctx, rec, in.letters); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	tests := []struct {
		name          string
		cfg           model.StatsConfig
		wantCorrect   int
		wantIncorrect int
	}{
		{name: "all", cfg: model.StatsConfig{}, wantCorrect: 6, wantIncorrect: 13},
		{name: "student", cfg: model.StatsConfig{Student: "ana"}, wantCorrect: 6, wantIncorrect: 4},
		{name: "last", cfg: model.StatsConfig{Student: "ana", Last: 2}, wantCorrect: 5, wantIncorrect: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggs, err := st.ListLetterAggregates(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("aggregates: %v", err)
			}
			var a model.LetterAggregate
			for _, agg := range aggs {
				if agg.Letter == "a" {
					a = agg
				}
			}
			if a.Correct != tt.wantCorrect || a.Incorrect != tt.wantIncorrect {
				t.Fatalf("unexpected aggregate for a: %+v", a)
			}
		})
	}

	evaluations, err := st.ListEvaluations(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	ids := make([]int64, len(evaluations))
	for i, e := range evaluations {
		ids[i] = e.EvaluationID
	}
	byQuery, err := st.ListLetterAggregates(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	byIDs, err := st.ListLetterAggregatesForEvaluations(ctx, ids)
	if err != nil {
		t.Fatalf("aggregates by ids: %v", err)
	}
	if len(byQuery) != len(byIDs) {
		t.Fatalf("expected matching aggregates, got %+v and %+v", byQuery, byIDs)
	}
}

func TestLetterAggregatesForEvaluationsBatches(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	previous := letterStatsBatch
	letterStatsBatch = 2
	t.Cleanup(func() { letterStatsBatch = previous })

	var ids []int64
	for i := 0; i < 5; i++ {
		rec := testRecord(t, "ana", base.Add(time.Duration(i)*time.Minute), "O gato.", "O gato.")
		id, err := st.InsertEvaluation(ctx, rec, []model.LetterStats{{Letter: "a", Correct: 1}, {Letter: "o", Incorrect: 1}})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	aggs, err := st.ListLetterAggregatesForEvaluations(ctx, ids)
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected one row per letter across batches, got %+v", aggs)
	}
	for _, agg := range aggs {
		if agg.Correct+agg.Incorrect != 5 {
			t.Fatalf("expected 5 observations for %q, got %+v", agg.Letter, agg)
		}
	}
}
