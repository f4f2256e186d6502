// Package statsui provides the Bubble Tea stats browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ditado/internal/model"
	"github.com/verte-zerg/ditado/internal/stats"
	"github.com/verte-zerg/ditado/internal/store"
	"github.com/verte-zerg/ditado/internal/tui"
)

const (
	tabOverview = iota
	tabLetters
	tabHistory
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	letters   table.Model
	history   table.Model

	detailMode bool
	detail     viewport.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		tabs:     []string{"Overview", "Letters", "History"},
		overview: viewport.New(0, 0),
		detail:   viewport.New(0, 0),
		letters:  newTable(letterColumns()),
		history:  newTable(historyColumns()),
	}
	m.filterInputs = []textinput.Model{
		newFilterInput("Student: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.detailMode {
			switch msg.String() {
			case "esc", "backspace", "q":
				m.detailMode = false
				return m, nil
			}
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabHistory {
				m.openDetail()
			}
			return m, nil
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case tabLetters:
			m.letters, cmd = m.letters.Update(msg)
		case tabHistory:
			m.history, cmd = m.history.Update(msg)
		default:
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func letterColumns() []table.Column {
	return []table.Column{
		{Title: "Letter", Width: 6},
		{Title: "Accuracy", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Total", Width: 6},
	}
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Date", Width: 16},
		{Title: "Exercise", Width: 14},
		{Title: "Words", Width: 6},
		{Title: "Letters", Width: 7},
		{Title: "Punct", Width: 5},
		{Title: "Accuracy", Width: 8},
	}
}

func buildLetterRows(aggs []model.LetterAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, letter := range stats.TopLettersByFrequency(aggs, len(aggs)) {
		for _, agg := range aggs {
			if agg.Letter != letter {
				continue
			}
			total := agg.Correct + agg.Incorrect
			acc := 0.0
			if total > 0 {
				acc = float64(agg.Correct) / float64(total) * 100
			}
			rows = append(rows, table.Row{
				agg.Letter,
				fmt.Sprintf("%.2f%%", acc),
				strconv.Itoa(agg.Correct),
				strconv.Itoa(agg.Incorrect),
				strconv.Itoa(total),
			})
		}
	}
	return rows
}

// buildHistoryRows lists evaluations newest first.
func buildHistoryRows(evaluations []model.EvaluationAggregate) []table.Row {
	rows := make([]table.Row, 0, len(evaluations))
	for i := len(evaluations) - 1; i >= 0; i-- {
		e := evaluations[i]
		rows = append(rows, table.Row{
			strconv.FormatInt(e.EvaluationID, 10),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.ExerciseID,
			fmt.Sprintf("%d/%d", e.CorrectWords, e.TotalWords),
			strconv.Itoa(e.LetterErrors),
			strconv.Itoa(e.PunctuationErrors),
			fmt.Sprintf("%d%%", e.Accuracy),
		})
	}
	return rows
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.detail.Width = m.width
	m.detail.Height = bodyHeight
	for _, t := range []*table.Model{&m.letters, &m.history} {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	m.letters.Blur()
	m.history.Blur()
	switch m.activeTab {
	case tabLetters:
		m.letters.Focus()
	case tabHistory:
		m.history.Focus()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n" + headerStyle.Render(truncateLine(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	student := m.cfg.Student
	if student == "" {
		student = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: student=%s  since=%s  last=%s  window=%d", student, since, last, m.cfg.CurveWindow)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down  Window: -/=  Settings: /  Quit: q"
	switch {
	case m.detailMode:
		help = "Scroll: up/down  Back: esc"
	case m.activeTab == tabHistory:
		help = "Nav: left/right  Select: up/down  Details: enter  Settings: /  Quit: q"
	}
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.detailMode {
		return m.detail.View()
	}
	if len(m.report.Evaluations) == 0 && m.activeTab != tabOverview {
		return "No evaluations found."
	}
	switch m.activeTab {
	case tabLetters:
		if len(m.report.LetterAggsAll) == 0 {
			return "No letter stats found."
		}
		return tableMutedStyle.Render(m.letters.View())
	case tabHistory:
		return tableMutedStyle.Render(m.history.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.letters.SetRows(buildLetterRows(report.LetterAggsAll))
	m.history.SetRows(buildHistoryRows(report.Evaluations))
	m.letters.GotoTop()
	m.history.GotoTop()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	evaluations := report.Evaluations
	if len(evaluations) == 0 {
		return "No evaluations found."
	}
	var accSum, best, wordErrs, letterErrs int
	for _, e := range evaluations {
		accSum += e.Accuracy
		best = max(best, e.Accuracy)
		wordErrs += e.WordErrors
		letterErrs += e.LetterErrors
	}
	cards := []string{
		metricCard("Evaluations", strconv.Itoa(len(evaluations))),
		metricCard("Avg Accuracy", fmt.Sprintf("%.1f%%", float64(accSum)/float64(len(evaluations)))),
		metricCard("Best", fmt.Sprintf("%d%%", best)),
		metricCard("Letter errors", strconv.Itoa(letterErrs)),
		metricCard("Word errors", strconv.Itoa(wordErrs)),
	}
	summary := strings.Join(cards, "\n")
	if width >= 80 {
		summary = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2]),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4]),
		)
	}
	var buf bytes.Buffer
	if err := stats.RenderAccuracyCurve(&buf, evaluations, window, width, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	weak := stats.SelectWeakLetters(report.LetterAggsWindow, 8)
	weakLine := "Weak letters: none"
	if len(weak) > 0 {
		letters := make([]string, 0, len(weak))
		for _, letter := range stats.TopLettersByFrequency(report.LetterAggsWindow, len(report.LetterAggsWindow)) {
			if _, ok := weak[[]rune(letter)[0]]; ok {
				letters = append(letters, letter)
			}
		}
		weakLine = "Weak letters: " + strings.Join(letters, " ")
	}
	return strings.TrimRight(summary+"\n\n"+buf.String()+weakLine, "\n")
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func (m *Model) openDetail() {
	row := m.history.SelectedRow()
	if row == nil {
		return
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	rec, metrics, err := m.store.GetEvaluationDetail(context.Background(), id)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	width := max(20, m.width)
	var buf bytes.Buffer
	if err := stats.RenderWordReport(&buf, metrics); err != nil {
		m.errMsg = err.Error()
		return
	}
	content := strings.Join([]string{
		cardValueStyle.Render(fmt.Sprintf("Evaluation %d · %s · %s", rec.ID, rec.ExerciseID, rec.CreatedAt.Local().Format("2006-01-02 15:04"))),
		"Reference: " + rec.ReferenceText,
		"Typed:     " + rec.StudentText,
		"",
		tui.RenderFeedback(metrics, width, true),
		tui.SummaryLine(metrics),
		"",
		buf.String(),
	}, "\n")
	m.detail.SetContent(content)
	m.detail.GotoTop()
	m.detailMode = true
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.filterInputs[0].SetValue(m.cfg.Student)
	m.filterInputs[1].SetValue("")
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	}
	m.filterInputs[2].SetValue("")
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	}
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filterInputs)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func parseFilter(inputs []textinput.Model) (model.StatsConfig, error) {
	cfg := model.StatsConfig{Student: strings.TrimSpace(inputs[0].Value()), CurveWindow: 1}
	if sinceInput := strings.TrimSpace(inputs[1].Value()); sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	if lastInput := strings.TrimSpace(inputs[2].Value()); lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}
	if windowInput := strings.TrimSpace(inputs[3].Value()); windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil || parsed < 1 {
			return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = parsed
	}
	return cfg, nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if pad := width - lipgloss.Width(line); pad > 0 {
			lines[i] = line + strings.Repeat(" ", pad)
		}
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
