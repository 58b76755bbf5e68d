package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keycamp/internal/config"
	"github.com/verte-zerg/keycamp/internal/export"
	"github.com/verte-zerg/keycamp/internal/model"
	"github.com/verte-zerg/keycamp/internal/stats"
	"github.com/verte-zerg/keycamp/internal/trainer"
	"github.com/verte-zerg/keycamp/internal/tui"
)

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyInt64Config(cmd, "seed", &practiceSeed, fileCfg.Practice.Seed)

	cfg := model.Config{
		ChapterID: practiceChapter,
		Words:     practiceWords,
		Seed:      practiceSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	a, err := openApp(ctx, cmd, appOptions{tui: true, words: cfg.Words, seed: cfg.Seed})
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.NewModel(ctx, a.trainer, cfg.ChapterID, a.logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Words < 0 {
		return fmt.Errorf("--words must be >= 0")
	}
	if cfg.ChapterID < 0 {
		return fmt.Errorf("--chapter must be >= 0")
	}
	return nil
}

func newChaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chapters",
		Short: "List chapters with lock state and stars",
		Args:  cobra.NoArgs,
		RunE:  runChaptersCmd,
	}
}

func runChaptersCmd(cmd *cobra.Command, _ []string) error {
	a, statuses, err := openOverview(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	color := isTerminal(out)
	phase := ""
	for _, st := range statuses {
		if st.Chapter.Phase != phase {
			phase = st.Chapter.Phase
			if err := writeLine(out, styled(color, headingStyle, fmt.Sprintf("Phase %d: %s", st.Chapter.PhaseNumber, phase))); err != nil {
				return err
			}
		}
		line := fmt.Sprintf("  %2d %s %s", st.Chapter.ID, stats.StarBar(st.Entry.Stars), st.Chapter.Title)
		switch {
		case st.Locked:
			line = styled(color, lockedStyle, line+" (locked)")
		case st.Attempted:
			line = styled(color, doneStyle, line)
		}
		if err := writeLine(out, line); err != nil {
			return err
		}
	}
	return nil
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show best results per chapter",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	a, statuses, err := openOverview(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return stats.RenderProgressTable(cmd.OutOrStdout(), statuses)
}

func openOverview(cmd *cobra.Command) (*app, []trainer.ChapterStatus, error) {
	a, err := openApp(cmd.Context(), cmd, appOptions{})
	if err != nil {
		return nil, nil, err
	}
	statuses, err := a.trainer.Overview(cmd.Context())
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return a, statuses, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show attempt history and weak keys",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsChapter, "chapter", 0, "chapter filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsWeakTop, "weak-top", defaultWeakTop, "number of weak keys to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)
	applyIntConfig(cmd, "window", &statsWindow, fileCfg.Stats.CurveWindow)
	applyIntConfig(cmd, "weak-top", &statsWeakTop, fileCfg.Stats.WeakTop)
	weakWindow := defaultWeakWindow
	if fileCfg.Stats.WeakWindow != nil {
		weakWindow = *fileCfg.Stats.WeakWindow
	}

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 || statsWindow < 0 || statsWeakTop < 0 {
		return fmt.Errorf("--last, --window and --weak-top must be >= 0")
	}

	cfg := model.StatsConfig{
		ChapterID: statsChapter,
		Since:     sinceTime,
		Last:      statsLast,
		KeyWindow: weakWindow,
		WeakTop:   statsWeakTop,
	}

	a, err := openApp(cmd.Context(), cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()
	history, err := a.requireHistory()
	if err != nil {
		return err
	}

	report, err := stats.BuildReport(cmd.Context(), history, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if statsChapter > 0 {
		ch, ok := a.catalog.ChapterByID(statsChapter)
		if !ok {
			return fmt.Errorf("chapter %d not found", statsChapter)
		}
		if err := writeLine(out, fmt.Sprintf("Chapter %d: %s\n", ch.ID, ch.Title)); err != nil {
			return err
		}
	}
	return report.Render(out, statsWindow, terminalWidth(out)-30)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export progress and attempts to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "keycamp.xlsx", "output file")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	if !strings.HasSuffix(strings.ToLower(exportOut), ".xlsx") {
		return fmt.Errorf("--out must end in .xlsx")
	}
	a, statuses, err := openOverview(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var attempts []model.AttemptAggregate
	if a.history != nil {
		attempts, err = a.history.ListAttempts(cmd.Context(), model.StatsConfig{})
		if err != nil {
			return fmt.Errorf("failed to load attempts: %w", err)
		}
	}
	if err := export.SaveXLSX(exportOut, statuses, attempts); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	logErrf("Wrote %s (%d chapters, %d attempts)\n", exportOut, len(statuses), len(attempts))
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear stored progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
	cmd.Flags().BoolVar(&resetHistory, "history", false, "also delete attempt history")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		logErrln("This deletes all stars and unlocks. Re-run with --yes to confirm.")
		return fmt.Errorf("reset not confirmed")
	}
	a, err := openApp(cmd.Context(), cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.trainer.Reset(cmd.Context()); err != nil {
		return err
	}
	if resetHistory {
		history, err := a.requireHistory()
		if err != nil {
			return err
		}
		if err := history.DeleteAttempts(cmd.Context()); err != nil {
			return fmt.Errorf("failed to delete history: %w", err)
		}
	}
	logErrln("Progress reset.")
	return nil
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	lockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
)

func styled(color bool, style lipgloss.Style, s string) string {
	if !color {
		return s
	}
	return style.Render(s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth falls back to 80 columns when w is not a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

func writeLine(w io.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func loadFileConfig() (config.FileConfig, error) {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
