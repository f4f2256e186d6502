package tui

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/ditado/internal/generator"
	"github.com/verte-zerg/ditado/internal/model"
	"github.com/verte-zerg/ditado/internal/store"
)

var testExercises = []model.Exercise{
	{ID: "gato-1", Level: 1, Text: "O gato dorme."},
	{ID: "casa-1", Level: 1, Text: "A casa é bonita."},
}

func newTestModel(t *testing.T, st *store.Store) *Model {
	t.Helper()
	cfg := model.Config{Student: "ana"}
	m := NewModel(cfg, st, generator.NewWithSource(rand.NewSource(7)), testExercises, nil, false)
	m.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return m
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestSubmitAndAdvance(t *testing.T) {
	m := newTestModel(t, nil)
	first := m.current
	typeText(m, first.Text)
	if m.input.Value() != first.Text {
		t.Fatalf("expected input %q, got %q", first.Text, m.input.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.checked || m.metrics.AccuracyPercentage != 100 {
		t.Fatalf("expected a perfect evaluation, got %+v", m.metrics)
	}
	typeText(m, "ignored")
	if m.input.Value() != first.Text {
		t.Fatalf("input must be frozen after checking, got %q", m.input.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.checked || m.input.Value() != "" {
		t.Fatalf("expected a fresh exercise after enter")
	}
	if m.current.ID == first.ID {
		t.Fatalf("expected a different exercise, got %q again", first.ID)
	}
}

func TestRevealToggle(t *testing.T) {
	m := newTestModel(t, nil)
	if strings.Contains(m.View(), m.current.Text) {
		t.Fatalf("reference must stay hidden before reveal")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.revealed {
		t.Fatalf("expected reveal after ctrl+r")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.revealed {
		t.Fatalf("expected ctrl+r to hide the reference again")
	}
}

func TestSubmitPersistsEvaluation(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "ditado.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	m := newTestModel(t, st)
	typeText(m, "qualquer coisa")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	evaluations, err := st.ListEvaluations(context.Background(), model.StatsConfig{Student: "ana"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(evaluations) != 1 || evaluations[0].ExerciseID != m.current.ID {
		t.Fatalf("expected one stored evaluation for %q, got %+v", m.current.ID, evaluations)
	}
	if evaluations[0].Accuracy != m.metrics.AccuracyPercentage {
		t.Fatalf("stored accuracy %d != shown %d", evaluations[0].Accuracy, m.metrics.AccuracyPercentage)
	}

	reloaded := newTestModel(t, st)
	if !reloaded.hasLast || reloaded.allCount != 1 {
		t.Fatalf("expected footer stats loaded from store")
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{hasLast: true, lastAcc: 82, allCount: 4, allSum: 350}
	out := m.renderFooter()
	for _, want := range []string{"Last 82%", "All-time 87.5% over 4", "enter: check", "ctrl+r: reveal"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestPreviewShowsSentenceUntilTick(t *testing.T) {
	m := NewModel(model.Config{Student: "ana", PreviewSeconds: 3}, nil, generator.NewWithSource(rand.NewSource(7)), testExercises, nil, false)
	if !m.previewing || !strings.Contains(m.View(), m.current.Text) {
		t.Fatalf("expected the sentence during preview")
	}
	if m.previewCmd() == nil {
		t.Fatalf("expected a preview timer")
	}

	m.Update(previewDoneMsg{seq: m.previewSeq - 1})
	if !m.previewing {
		t.Fatalf("a stale timer must not end the current preview")
	}
	m.Update(previewDoneMsg{seq: m.previewSeq})
	if m.previewing || strings.Contains(m.View(), m.current.Text) {
		t.Fatalf("expected the sentence hidden after the preview")
	}

	typeText(m, "x")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.previewing {
		t.Fatalf("expected a new preview for the next exercise")
	}
	typeText(m, "O")
	if m.previewing {
		t.Fatalf("typing must end the preview")
	}
}

func TestFooterHintWithoutPreview(t *testing.T) {
	m := newTestModel(t, nil)
	if m.previewing || m.previewCmd() != nil {
		t.Fatalf("preview must be off by default")
	}
	if !strings.Contains(m.renderFooter(), "listen to the reader, then type") {
		t.Fatalf("expected dictation hint in footer: %s", m.renderFooter())
	}
}
