// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/ditado/internal/dictation"
	"github.com/verte-zerg/ditado/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var letterStatsBatch = 500

// ErrNotFound is returned when an evaluation id does not exist.
var ErrNotFound = errors.New("evaluation not found")

// Store wraps SQLite access for evaluation data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			student TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			reference_text TEXT NOT NULL,
			student_text TEXT NOT NULL,
			total_words INTEGER NOT NULL,
			correct_words INTEGER NOT NULL,
			omitted_words INTEGER NOT NULL,
			extra_words INTEGER NOT NULL,
			omission_letters INTEGER NOT NULL,
			insertion_letters INTEGER NOT NULL,
			substitution_letters INTEGER NOT NULL,
			transposition_letters INTEGER NOT NULL,
			punctuation_errors INTEGER NOT NULL,
			case_errors INTEGER NOT NULL,
			merge_words INTEGER NOT NULL,
			split_words INTEGER NOT NULL,
			substitution_words INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			detail_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS evaluation_letter_stats (
			evaluation_id INTEGER NOT NULL,
			letter TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (evaluation_id, letter)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_student ON evaluations(student);`,
		`CREATE INDEX IF NOT EXISTS idx_evaluation_letter_stats_letter ON evaluation_letter_stats(letter);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertEvaluation stores an evaluation row and its per-letter stats.
func (s *Store) InsertEvaluation(ctx context.Context, rec model.EvaluationRecord, letters []model.LetterStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO evaluations (created_at, student, exercise_id, reference_text, student_text,
			total_words, correct_words, omitted_words, extra_words,
			omission_letters, insertion_letters, substitution_letters, transposition_letters,
			punctuation_errors, case_errors, merge_words, split_words, substitution_words,
			accuracy, detail_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.Student,
		rec.ExerciseID,
		rec.ReferenceText,
		rec.StudentText,
		rec.TotalWords,
		rec.CorrectWords,
		rec.OmittedWords,
		rec.ExtraWords,
		rec.OmissionLetters,
		rec.InsertionLetters,
		rec.SubstitutionLetters,
		rec.TranspositionLetters,
		rec.PunctuationErrors,
		rec.CaseErrors,
		rec.MergeWords,
		rec.SplitWords,
		rec.SubstitutionWords,
		rec.Accuracy,
		rec.DetailJSON,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(letters) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO evaluation_letter_stats (evaluation_id, letter, correct, incorrect)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ls := range letters {
			if _, err := stmt.ExecContext(ctx, id, ls.Letter, ls.Correct, ls.Incorrect); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetWeakLetters aggregates letter stats over the most recent evaluations of a student.
func (s *Store) GetWeakLetters(ctx context.Context, window int, student string) ([]model.LetterAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT id FROM evaluations
		WHERE (? = '' OR student = ?)
		ORDER BY created_at DESC
		LIMIT ?
	)
	SELECT ls.letter, SUM(ls.correct) AS correct, SUM(ls.incorrect) AS incorrect
	FROM evaluation_letter_stats ls
	JOIN recent r ON r.id = ls.evaluation_id
	GROUP BY ls.letter`

	rows, err := s.db.QueryContext(ctx, query, student, student, window)
	if err != nil {
		return nil, err
	}
	return scanLetterAggregates(rows)
}

// ListEvaluations returns evaluation aggregates filtered by stats config, oldest first.
func (s *Store) ListEvaluations(ctx context.Context, cfg model.StatsConfig) ([]model.EvaluationAggregate, error) {
	where, args := evaluationFilter(cfg)
	query := fmt.Sprintf(`SELECT id, created_at, exercise_id, total_words, correct_words,
			omission_letters + insertion_letters + substitution_letters + transposition_letters,
			punctuation_errors, case_errors,
			omitted_words + extra_words + merge_words + split_words + substitution_words,
			accuracy
		FROM evaluations
		WHERE %s
		ORDER BY created_at ASC, id ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var evaluations []model.EvaluationAggregate
	for rows.Next() {
		var agg model.EvaluationAggregate
		var createdAt string
		if err := rows.Scan(&agg.EvaluationID, &createdAt, &agg.ExerciseID, &agg.TotalWords, &agg.CorrectWords,
			&agg.LetterErrors, &agg.PunctuationErrors, &agg.CaseErrors, &agg.WordErrors, &agg.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		agg.CreatedAt = parsed
		evaluations = append(evaluations, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(evaluations) > cfg.Last {
		evaluations = evaluations[len(evaluations)-cfg.Last:]
	}
	return evaluations, nil
}

// ListLetterAggregates aggregates per-letter stats over the evaluations that
// ListEvaluations returns for the same config. The selection stays in SQL, so
// the number of evaluations is not bounded by the statement variable limit.
func (s *Store) ListLetterAggregates(ctx context.Context, cfg model.StatsConfig) ([]model.LetterAggregate, error) {
	where, args := evaluationFilter(cfg)
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT ls.letter, SUM(ls.correct) AS correct, SUM(ls.incorrect) AS incorrect
		FROM evaluation_letter_stats ls
		WHERE ls.evaluation_id IN (
			SELECT id FROM evaluations
			WHERE %s
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
		GROUP BY ls.letter`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanLetterAggregates(rows)
}

// ListLetterAggregatesForEvaluations aggregates per-letter stats across evaluations.
// Ids are queried in batches of letterStatsBatch.
func (s *Store) ListLetterAggregatesForEvaluations(ctx context.Context, ids []int64) ([]model.LetterAggregate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var result []model.LetterAggregate
	index := map[string]int{}
	for start := 0; start < len(ids); start += letterStatsBatch {
		batch := ids[start:min(start+letterStatsBatch, len(ids))]
		aggs, err := s.letterAggregatesBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, agg := range aggs {
			if i, ok := index[agg.Letter]; ok {
				result[i].Correct += agg.Correct
				result[i].Incorrect += agg.Incorrect
				continue
			}
			index[agg.Letter] = len(result)
			result = append(result, agg)
		}
	}
	return result, nil
}

func (s *Store) letterAggregatesBatch(ctx context.Context, ids []int64) ([]model.LetterAggregate, error) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT letter, SUM(correct) AS correct, SUM(incorrect) AS incorrect
		FROM evaluation_letter_stats
		WHERE evaluation_id IN (%s)
		GROUP BY letter`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanLetterAggregates(rows)
}

// GetEvaluation loads one stored evaluation row.
func (s *Store) GetEvaluation(ctx context.Context, id int64) (model.EvaluationRecord, error) {
	var rec model.EvaluationRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, student, exercise_id, reference_text, student_text,
			total_words, correct_words, omitted_words, extra_words,
			omission_letters, insertion_letters, substitution_letters, transposition_letters,
			punctuation_errors, case_errors, merge_words, split_words, substitution_words,
			accuracy, detail_json
		FROM evaluations WHERE id = ?`, id).Scan(
		&rec.ID, &createdAt, &rec.Student, &rec.ExerciseID, &rec.ReferenceText, &rec.StudentText,
		&rec.TotalWords, &rec.CorrectWords, &rec.OmittedWords, &rec.ExtraWords,
		&rec.OmissionLetters, &rec.InsertionLetters, &rec.SubstitutionLetters, &rec.TranspositionLetters,
		&rec.PunctuationErrors, &rec.CaseErrors, &rec.MergeWords, &rec.SplitWords, &rec.SubstitutionWords,
		&rec.Accuracy, &rec.DetailJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return rec, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return rec, err
	}
	rec.CreatedAt = parsed
	return rec, nil
}

// GetEvaluationDetail loads a stored evaluation and decodes its word detail.
func (s *Store) GetEvaluationDetail(ctx context.Context, id int64) (model.EvaluationRecord, dictation.EvaluationMetrics, error) {
	var metrics dictation.EvaluationMetrics
	rec, err := s.GetEvaluation(ctx, id)
	if err != nil {
		return rec, metrics, err
	}
	if err := json.Unmarshal([]byte(rec.DetailJSON), &metrics); err != nil {
		return rec, metrics, fmt.Errorf("failed to decode evaluation %d detail: %w", id, err)
	}
	return rec, metrics, nil
}

func evaluationFilter(cfg model.StatsConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Student != "" {
		clauses = append(clauses, "student = ?")
		args = append(args, cfg.Student)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	return strings.Join(clauses, " AND "), args
}

func scanLetterAggregates(rows *sql.Rows) ([]model.LetterAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LetterAggregate
	for rows.Next() {
		var agg model.LetterAggregate
		if err := rows.Scan(&agg.Letter, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
