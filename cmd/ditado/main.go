// Package main provides the CLI entrypoint for ditado.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/ditado/internal/config"
	"github.com/verte-zerg/ditado/internal/dictation"
	"github.com/verte-zerg/ditado/internal/exercise"
	"github.com/verte-zerg/ditado/internal/generator"
	"github.com/verte-zerg/ditado/internal/model"
	"github.com/verte-zerg/ditado/internal/stats"
	"github.com/verte-zerg/ditado/internal/statsui"
	"github.com/verte-zerg/ditado/internal/store"
	"github.com/verte-zerg/ditado/internal/tui"
)

const (
	defaultStudent     = "default"
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultPreview     = 0
	defaultCurveWindow = 20
	fallbackWidth      = 80
	builtinSource      = "builtin"
)

var (
	practiceExercises  string
	practiceLevel      int
	practiceStudent    string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practicePreview    int

	checkExercise string
	checkJSON     bool
	checkSave     bool
	checkStudent  string

	statsStudent     string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	showJSON bool

	exercisesLevel int
	exercisesInit  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ditado",
		Short:         "Portuguese dictation trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceExercises, "exercises", "", "exercise file (.toml, .yaml)")
	rootCmd.Flags().IntVar(&practiceLevel, "level", 0, "only exercises of this level (0 = all)")
	rootCmd.Flags().StringVar(&practiceStudent, "student", defaultStudent, "student name stored with each evaluation")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias exercise choice toward weak letters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak letters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight per weak letter in an exercise")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent evaluations to compute weak letters")
	rootCmd.Flags().IntVar(&practicePreview, "preview", defaultPreview, "seconds to show each sentence before typing (0 = someone reads it aloud)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newExercisesCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// loadPracticeConfig overlays the config file on the root command's practice
// flags. Subcommands share it, so flag changes are always read from the root.
func loadPracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	root := cmd.Root()
	applyStringConfig(root, "exercises", &practiceExercises, fileCfg.Practice.Exercises)
	applyIntConfig(root, "level", &practiceLevel, fileCfg.Practice.Level)
	applyStringConfig(root, "student", &practiceStudent, fileCfg.Practice.Student)
	applyBoolConfig(root, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(root, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(root, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(root, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applyIntConfig(root, "preview", &practicePreview, fileCfg.Practice.Preview)

	cfg := model.Config{
		ExercisesPath:  practiceExercises,
		Level:          practiceLevel,
		Student:        practiceStudent,
		FocusWeak:      practiceFocusWeak,
		WeakTop:        practiceWeakTop,
		WeakFactor:     practiceWeakFactor,
		WeakWindow:     practiceWeakWindow,
		PreviewSeconds: practicePreview,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	all, source, err := loadExercises(cfg.ExercisesPath)
	if err != nil {
		return err
	}
	exercises := exercise.FilterForLevel(all, cfg.Level)
	if len(exercises) == 0 {
		return fmt.Errorf("no exercises of level %d in %s", cfg.Level, source)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	weakSet := map[rune]struct{}{}
	weakNoticePrinted := false
	if cfg.FocusWeak {
		aggs, err := st.GetWeakLetters(commandContext(cmd), cfg.WeakWindow, cfg.Student)
		if err != nil {
			logErrf("failed to load weak letters: %v\n", err)
		} else {
			weakSet = stats.SelectWeakLetters(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logErrln("no weak letters yet; picking exercises uniformly")
				weakNoticePrinted = true
			}
		}
	}

	ui := tui.NewModel(cfg, st, generator.New(), exercises, weakSet, weakNoticePrinted)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [reference] [student]",
		Short: "Evaluate one transcription",
		Long: "Evaluate a transcription against a reference sentence.\n" +
			"With --exercise the reference comes from the exercise file and the only argument is the transcription.\n" +
			"A transcription of \"-\" or a missing one is read from stdin.",
		Args: cobra.RangeArgs(0, 2),
		RunE: runCheckCmd,
	}
	cmd.Flags().StringVar(&checkExercise, "exercise", "", "take the reference from this exercise id")
	cmd.Flags().BoolVar(&checkJSON, "json", false, "print the evaluation as JSON")
	cmd.Flags().BoolVar(&checkSave, "save", false, "store the evaluation in the stats database")
	cmd.Flags().StringVar(&checkStudent, "student", "", "student name (default from config)")
	return cmd
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	exerciseID := ""
	var reference, typed string
	switch {
	case checkExercise != "":
		if len(args) > 1 {
			return fmt.Errorf("--exercise takes at most one argument (the transcription)")
		}
		cfg, err := loadPracticeConfig(cmd)
		if err != nil {
			return err
		}
		all, source, err := loadExercises(cfg.ExercisesPath)
		if err != nil {
			return err
		}
		ex, ok := exercise.Find(all, checkExercise)
		if !ok {
			return fmt.Errorf("exercise %q not found in %s", checkExercise, source)
		}
		exerciseID = ex.ID
		reference = ex.Text
		if len(args) == 1 {
			typed = args[0]
		} else {
			typed = "-"
		}
	case len(args) == 0:
		return fmt.Errorf("a reference sentence is required (or use --exercise)")
	default:
		reference = args[0]
		typed = "-"
		if len(args) == 2 {
			typed = args[1]
		}
	}
	if typed == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read transcription: %w", err)
		}
		typed = strings.TrimRight(string(data), "\r\n")
	}

	metrics := dictation.Evaluate(reference, typed)

	if checkSave {
		student, err := resolveStudent(cmd, checkStudent)
		if err != nil {
			return err
		}
		id, err := saveEvaluation(commandContext(cmd), metrics, student, exerciseID, reference, typed)
		if err != nil {
			return err
		}
		logErrf("saved evaluation %d\n", id)
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		return writeJSON(out, metrics)
	}
	return writeEvaluation(out, metrics)
}

func saveEvaluation(ctx context.Context, metrics dictation.EvaluationMetrics, student, exerciseID, reference, typed string) (int64, error) {
	rec, err := stats.RecordFromMetrics(metrics, student, exerciseID, reference, typed, time.Now())
	if err != nil {
		return 0, err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return 0, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertEvaluation(ctx, rec, stats.LetterStatsFromMetrics(metrics))
	if err != nil {
		return 0, fmt.Errorf("failed to save evaluation: %w", err)
	}
	return id, nil
}

func resolveStudent(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.Student, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeEvaluation(w io.Writer, metrics dictation.EvaluationMetrics) error {
	useColor := stdoutColor(w)
	lines := []string{
		tui.RenderFeedback(metrics, terminalWidth(), useColor),
		tui.SummaryLine(metrics),
		"",
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderWordReport(w, metrics)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored evaluation word by word",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
	cmd.Flags().BoolVar(&showJSON, "json", false, "print the stored evaluation as JSON")
	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid evaluation id %q", args[0])
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	rec, metrics, err := st.GetEvaluationDetail(commandContext(cmd), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to load evaluation: %w", err)
	}
	out := cmd.OutOrStdout()
	if showJSON {
		return writeJSON(out, metrics)
	}
	exerciseLabel := rec.ExerciseID
	if exerciseLabel == "" {
		exerciseLabel = "-"
	}
	header := []string{
		fmt.Sprintf("Evaluation %d · %s · student %s · exercise %s", rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Student, exerciseLabel),
		"Reference: " + rec.ReferenceText,
		"Typed:     " + rec.StudentText,
		"",
	}
	if _, err := fmt.Fprintln(out, strings.Join(header, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return writeEvaluation(out, metrics)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsStudent, "student", "", "student filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N evaluations")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text reports instead of the interactive browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Student:     statsStudent,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	if statsPlain || !isTerminal(out) {
		return writeStatsReport(commandContext(cmd), out, st, cfg)
	}
	ui := statsui.NewModel(st, cfg)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writeStatsReport(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Evaluations); err != nil {
		return err
	}
	if len(report.Evaluations) == 0 {
		return nil
	}
	if err := stats.RenderAccuracyCurve(w, report.Evaluations, cfg.CurveWindow, terminalWidth(), stdoutColor(w)); err != nil {
		return err
	}
	return stats.RenderLetterTable(w, report.LetterAggsWindow)
}

func newExercisesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List dictation exercises",
		Args:  cobra.NoArgs,
		RunE:  runExercisesCmd,
	}
	cmd.Flags().IntVar(&exercisesLevel, "level", 0, "only exercises of this level (0 = all)")
	cmd.Flags().BoolVar(&exercisesInit, "init", false, "write the bundled exercises to the default exercise file")
	return cmd
}

func runExercisesCmd(cmd *cobra.Command, _ []string) error {
	if exercisesInit {
		path := config.DefaultExercisesPath()
		if err := writeNewFile(path, exercise.BuiltinTOML()); err != nil {
			return err
		}
		logErrf("Wrote %s\n", path)
		return nil
	}
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	all, source, err := loadExercises(cfg.ExercisesPath)
	if err != nil {
		return err
	}
	level := exercisesLevel
	if !cmd.Flags().Changed("level") {
		level = cfg.Level
	}
	exercises := exercise.FilterForLevel(all, level)
	logErrf("%d exercises from %s\n", len(exercises), source)
	rows := make([][]string, 0, len(exercises))
	for _, ex := range exercises {
		rows = append(rows, []string{ex.ID, strconv.Itoa(ex.Level), ex.Text})
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// loadExercises reads the configured exercise file. Without one it falls back
// to the default path and then to the bundled set.
func loadExercises(path string) ([]model.Exercise, string, error) {
	if path == "" {
		path = config.DefaultExercisesPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return exercise.Builtin(), builtinSource, nil
		}
	}
	exercises, err := exercise.LoadExercises(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load exercises from %s: %w", path, err)
	}
	return exercises, path, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := writeNewFile(path, []byte(defaultConfigTemplate())); err != nil {
			return err
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func writeNewFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# ditado configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# exercises = "%s"   # Exercise file (.toml or .yaml); bundled set when missing
# level = 0               # Only exercises of this level (0 = all)
# student = %q        # Student name stored with each evaluation
# focus-weak = false      # Bias exercise choice toward weak letters
# weak-top = %d           # Number of weak letters to focus on
# weak-factor = %.1f      # Weight per weak letter in an exercise
# weak-window = %d        # Number of recent evaluations to compute weak letters
# preview = %d             # Seconds to show each sentence before typing (0 = read aloud by someone)
`,
		config.DefaultExercisesPath(),
		defaultStudent,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultPreview,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Level < 0 {
		return fmt.Errorf("--level must be >= 0")
	}
	if strings.TrimSpace(cfg.Student) == "" {
		return fmt.Errorf("--student must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	if cfg.PreviewSeconds < 0 {
		return fmt.Errorf("--preview must be >= 0")
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func stdoutColor(w io.Writer) bool {
	return os.Getenv("NO_COLOR") == "" && isTerminal(w)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
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
