// Package tui provides the Bubble Tea dictation interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ditado/internal/dictation"
	"github.com/verte-zerg/ditado/internal/generator"
	"github.com/verte-zerg/ditado/internal/model"
	statsPkg "github.com/verte-zerg/ditado/internal/stats"
	"github.com/verte-zerg/ditado/internal/store"
)

// Model implements the Bubble Tea dictation UI.
type Model struct {
	config            model.Config
	store             *store.Store
	gen               *generator.Generator
	exercises         []model.Exercise
	weakSet           map[rune]struct{}
	weakNoticePrinted bool
	now               func() time.Time

	width  int
	height int

	input      textinput.Model
	current    model.Exercise
	checked    bool
	revealed   bool
	previewing bool
	previewSeq int
	metrics    dictation.EvaluationMetrics

	lastAcc  int
	hasLast  bool
	allCount int
	allSum   int
}

type previewDoneMsg struct {
	seq int
}

// NewModel constructs a dictation TUI model. The store may be nil, in which
// case evaluations are not persisted.
func NewModel(cfg model.Config, st *store.Store, gen *generator.Generator, exercises []model.Exercise, weakSet map[rune]struct{}, weakNoticePrinted bool) *Model {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "escreva o que ouviu"
	input.CharLimit = 0
	input.Focus()

	m := &Model{
		config:            cfg,
		store:             st,
		gen:               gen,
		exercises:         exercises,
		weakSet:           weakSet,
		weakNoticePrinted: weakNoticePrinted,
		now:               time.Now,
		input:             input,
	}
	m.nextExercise()
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.previewCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewDoneMsg:
		if msg.seq == m.previewSeq {
			m.previewing = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.contentWidth()-lipgloss.Width(m.input.Prompt)-1)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.revealed = !m.revealed
			return m, nil
		case tea.KeyEnter:
			if m.checked {
				m.nextExercise()
				return m, tea.Batch(m.input.Focus(), m.previewCmd())
			}
			m.submit()
			return m, nil
		}
		if m.checked {
			return m, nil
		}
		if msg.Type == tea.KeyRunes {
			m.previewing = false
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.current.Text == "" {
		return ""
	}
	width := m.contentWidth()
	useColor := true
	sections := []string{footerStyle.Render(fmt.Sprintf("Exercise %s · level %d", m.current.ID, m.current.Level))}
	if m.revealed || m.checked || m.previewing {
		sections = append(sections, renderReference(m.current.Text, width, useColor))
	}
	if m.checked {
		sections = append(sections,
			RenderFeedback(m.metrics, width, useColor),
			renderScore(m.metrics)+"  "+footerStyle.Render(SummaryLine(m.metrics)),
		)
	} else {
		sections = append(sections, m.input.View())
	}
	content := lipgloss.NewStyle().Width(width).Render(strings.Join(sections, "\n\n"))
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + m.renderFooter()
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) nextExercise() {
	previous := m.current.ID
	if m.config.FocusWeak && len(m.weakSet) > 0 {
		m.current = m.gen.PickWeighted(m.exercises, previous, m.weakSet, m.config.WeakFactor)
	} else {
		m.current = m.gen.Pick(m.exercises, previous)
	}
	m.checked = false
	m.revealed = false
	m.previewing = m.config.PreviewSeconds > 0
	m.previewSeq++
	m.metrics = dictation.EvaluationMetrics{}
	m.input.Reset()
}

// previewCmd hides the current sentence once its preview time is over.
func (m *Model) previewCmd() tea.Cmd {
	if !m.previewing {
		return nil
	}
	seq := m.previewSeq
	return tea.Tick(time.Duration(m.config.PreviewSeconds)*time.Second, func(time.Time) tea.Msg {
		return previewDoneMsg{seq: seq}
	})
}

func (m *Model) submit() {
	typed := m.input.Value()
	m.metrics = dictation.Evaluate(m.current.Text, typed)
	m.checked = true
	m.input.Blur()

	m.lastAcc = m.metrics.AccuracyPercentage
	m.hasLast = true
	m.allCount++
	m.allSum += m.metrics.AccuracyPercentage

	if m.store == nil {
		return
	}
	rec, err := statsPkg.RecordFromMetrics(m.metrics, m.config.Student, m.current.ID, m.current.Text, typed, m.now())
	if err != nil {
		logErrf("failed to save evaluation: %v\n", err)
		return
	}
	if _, err := m.store.InsertEvaluation(context.Background(), rec, statsPkg.LetterStatsFromMetrics(m.metrics)); err != nil {
		logErrf("failed to save evaluation: %v\n", err)
		return
	}
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	evaluations, err := m.store.ListEvaluations(context.Background(), model.StatsConfig{Student: m.config.Student})
	if err != nil {
		logErrf("failed to load evaluation stats: %v\n", err)
		return
	}
	if len(evaluations) == 0 {
		return
	}
	m.lastAcc = evaluations[len(evaluations)-1].Accuracy
	m.hasLast = true
	for _, e := range evaluations {
		m.allSum += e.Accuracy
	}
	m.allCount = len(evaluations)
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d%%", m.lastAcc))
	}
	if m.allCount > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f%% over %d", float64(m.allSum)/float64(m.allCount), m.allCount))
	}
	switch {
	case m.checked:
		segments = append(segments, "enter: next")
	case m.previewing:
		segments = append(segments, "memorize, then type", "enter: check")
	default:
		segments = append(segments, "listen to the reader, then type", "enter: check")
	}
	segments = append(segments, "ctrl+r: reveal", "ctrl+c: quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) refreshWeakSet() {
	aggs, err := m.store.GetWeakLetters(context.Background(), m.config.WeakWindow, m.config.Student)
	if err != nil {
		logErrf("failed to load weak letters: %v\n", err)
		return
	}
	m.weakSet = statsPkg.SelectWeakLetters(aggs, m.config.WeakTop)
	if len(m.weakSet) == 0 && !m.weakNoticePrinted {
		logErrln("no weak letters yet; picking exercises uniformly")
		m.weakNoticePrinted = true
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
