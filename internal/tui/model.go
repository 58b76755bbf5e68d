// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keycamp/internal/curriculum"
	"github.com/verte-zerg/keycamp/internal/session"
	"github.com/verte-zerg/keycamp/internal/stats"
	"github.com/verte-zerg/keycamp/internal/trainer"
)

type screen int

const (
	screenList screen = iota
	screenTyping
	screenResult
)

// tickMsg refreshes the typing footer. Ticks from an older session are dropped.
type tickMsg struct {
	session int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Bold(true)
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	starStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FADB14"))
)

// Model implements the Bubble Tea chapter browser and typing UI.
type Model struct {
	ctx     context.Context
	trainer *trainer.Trainer
	logger  *slog.Logger

	width  int
	height int

	screen   screen
	table    table.Model
	statuses []trainer.ChapterStatus
	notice   string

	chapter   curriculum.Chapter
	session   *session.Session
	live      session.Live
	sessionID int
	outcome   trainer.Outcome
}

// NewModel builds the UI. A positive chapterID opens that chapter directly
// when it is accessible; otherwise the list is shown with a notice.
func NewModel(ctx context.Context, tr *trainer.Trainer, chapterID int, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		ctx:     ctx,
		trainer: tr,
		logger:  logger,
		table: table.New(
			table.WithColumns(listColumns()),
			table.WithFocused(true),
			table.WithHeight(12),
		),
	}
	m.refreshList()
	if chapterID > 0 {
		m.open(chapterID)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenTyping {
		return m.tick()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(3, msg.Height-6))
		return m, nil
	case tickMsg:
		if m.screen != screenTyping || msg.session != m.sessionID {
			return m, nil
		}
		m.live = m.session.Live()
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenTyping:
			return m.updateTyping(msg)
		case screenResult:
			return m.updateResult(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		row := m.table.Cursor()
		if row < 0 || row >= len(m.statuses) {
			return m, nil
		}
		if m.open(m.statuses[row].Chapter.ID) {
			return m, m.tick()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var delta string
	switch msg.Type {
	case tea.KeyEsc:
		m.backToList("")
		return m, nil
	case tea.KeySpace:
		delta = " "
	case tea.KeyRunes:
		delta = string(msg.Runes)
	default:
		return m, nil
	}
	live, err := m.session.Input(delta)
	if errors.Is(err, session.ErrFinished) || errors.Is(err, session.ErrEmptyText) {
		return m, nil
	}
	m.live = live
	if live.State == session.Finished {
		m.complete()
	}
	return m, nil
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.startSession(m.trainer.NewSession(m.chapter))
		return m, m.tick()
	case "enter", "esc":
		m.backToList("")
		return m, nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// open enters a chapter. Redirects keep the list visible with a notice.
func (m *Model) open(chapterID int) bool {
	ch, sess, err := m.trainer.Open(m.ctx, chapterID)
	if err != nil {
		switch {
		case errors.Is(err, trainer.ErrChapterLocked):
			m.backToList(fmt.Sprintf("Chapter %d is locked.", chapterID))
		case trainer.IsRedirect(err):
			m.backToList(fmt.Sprintf("Chapter %d does not exist.", chapterID))
		default:
			m.logger.Error("failed to open chapter", "chapter", chapterID, "error", err)
			m.backToList("Could not load progress.")
		}
		return false
	}
	m.chapter = ch
	m.startSession(sess)
	return true
}

func (m *Model) startSession(sess *session.Session) {
	m.session = sess
	m.live = sess.Live()
	m.sessionID++
	m.notice = ""
	m.screen = screenTyping
}

func (m *Model) complete() {
	res, ok := m.session.Result()
	if !ok {
		return
	}
	out, err := m.trainer.Complete(m.ctx, m.chapter, res)
	if err != nil {
		m.logger.Error("failed to record attempt", "chapter", m.chapter.ID, "error", err)
		m.notice = "Progress could not be saved."
		out = trainer.Outcome{ChapterID: m.chapter.ID, Result: res}
	}
	m.outcome = out
	m.screen = screenResult
}

func (m *Model) backToList(notice string) {
	m.session = nil
	m.sessionID++
	m.screen = screenList
	m.notice = notice
	m.refreshList()
}

func (m *Model) refreshList() {
	statuses, err := m.trainer.Overview(m.ctx)
	if err != nil {
		m.logger.Error("failed to load chapters", "error", err)
		return
	}
	m.statuses = statuses
	rows := make([]table.Row, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, chapterRow(st))
	}
	m.table.SetRows(rows)
}

func (m *Model) tick() tea.Cmd {
	id := m.sessionID
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{session: id}
	})
}

func listColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Chapter", Width: 28},
		{Title: "Phase", Width: 18},
		{Title: "Stars", Width: 6},
		{Title: "Best", Width: 12},
	}
}

func chapterRow(st trainer.ChapterStatus) table.Row {
	stars, best := stats.StarBar(st.Entry.Stars), ""
	switch {
	case st.Locked:
		stars = "locked"
	case st.Attempted:
		best = fmt.Sprintf("%d wpm %d%%", st.Entry.WPM, st.Entry.Accuracy)
	}
	return table.Row{
		fmt.Sprintf("%d", st.Chapter.ID),
		st.Chapter.Title,
		st.Chapter.Phase,
		stars,
		best,
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenTyping:
		body = m.viewTyping()
	case screenResult:
		body = m.viewResult()
	default:
		body = m.viewList()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) viewList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("keycamp"))
	if total := totalStars(m.statuses); total > 0 {
		b.WriteString("  " + starStyle.Render(fmt.Sprintf("%d stars", total)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString(footerStyle.Render("enter start  q quit"))
	return b.String()
}

func (m *Model) viewTyping() string {
	runes := buildStyledRunes(m.live)
	contentWidth := int(float64(m.width) * 0.70)
	var text string
	if contentWidth < 1 {
		text = renderStyledRunes(runes)
	} else {
		text = lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledRunes(runes, contentWidth))
	}
	header := titleStyle.Render(fmt.Sprintf("Chapter %d: %s", m.chapter.ID, m.chapter.Title))
	return header + "\n\n" + text + "\n\n" + m.renderFooter()
}

func (m *Model) renderFooter() string {
	live := m.live
	pct := 0
	if live.Total > 0 {
		pct = live.Typed * 100 / live.Total
	}
	segments := []string{
		fmt.Sprintf("%ds", live.ElapsedSeconds),
		fmt.Sprintf("Progress %d%%", pct),
		fmt.Sprintf("Accuracy %d%%", live.Accuracy),
	}
	if m.chapter.TargetWPM > 0 {
		segments = append(segments, fmt.Sprintf("Target %d WPM", m.chapter.TargetWPM))
	}
	segments = append(segments, "esc back")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) viewResult() string {
	out := m.outcome
	res := out.Result
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Chapter %d complete", m.chapter.ID)),
		"",
		starStyle.Render(stats.StarBar(out.Stars)),
		fmt.Sprintf("WPM %d  Accuracy %d%%  Errors %d  Time %.1fs", res.WPM, res.Accuracy, res.Errors, res.Duration.Seconds()),
	}
	switch {
	case out.Updated && out.HadPrevious:
		lines = append(lines, fmt.Sprintf("New best! Previous: %d stars, %d WPM.", out.Previous.Stars, out.Previous.WPM))
	case out.Updated:
		lines = append(lines, "First completion recorded.")
	case out.HadPrevious:
		lines = append(lines, fmt.Sprintf("Best stays at %d stars, %d WPM.", out.Best.Stars, out.Best.WPM))
	}
	if next := m.nextHint(); next != "" {
		lines = append(lines, next)
	}
	for _, id := range out.NewlyUnlocked {
		if ch, ok := m.trainer.Catalog().ChapterByID(id); ok {
			lines = append(lines, noticeStyle.Render(fmt.Sprintf("Unlocked chapter %d: %s", ch.ID, ch.Title)))
		}
	}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	lines = append(lines, "", footerStyle.Render("r retry  enter chapters  q quit"))
	return strings.Join(lines, "\n")
}

// nextHint names the thresholds for the next star level.
func (m *Model) nextHint() string {
	level := m.outcome.Stars + 1
	t, ok := m.chapter.Threshold(level)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Next star: %d WPM at %d%% accuracy.", t.WPM, t.Accuracy)
}

func totalStars(statuses []trainer.ChapterStatus) int {
	total := 0
	for _, st := range statuses {
		total += st.Entry.Stars
	}
	return total
}
