package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/models"
)

// Daily deep work goal shown under the clock.
const (
	goalMinMinutes = 4 * 60
	goalMaxMinutes = 6 * 60
)

type timerKeys struct {
	Stop key.Binding
	Exit key.Binding
	Quit key.Binding
}

func (k timerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Exit, k.Quit}
}

func (k timerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultTimerKeys = timerKeys{
	Stop: key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "stop & save")),
	Exit: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "exit (keep running)")),
	Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "force quit")),
}

// StopFunc closes the running session.
type StopFunc func() (*models.Session, error)

// TimerModel shows a running deep work session.
type TimerModel struct {
	width  int
	height int

	session *models.Session
	today   ledger.Stats
	loc     *time.Location
	now     func() time.Time
	stop    StopFunc

	elapsed time.Duration
	frame   int
	shimmer *Shimmer
	keys    timerKeys
	help    help.Model

	stopping bool
	exiting  bool
	stopped  *models.Session
	err      error
}

type timerTickMsg time.Time

type animationTickMsg time.Time

type sessionStoppedMsg struct {
	session *models.Session
	err     error
}

// NewTimerModel creates a timer for an open session. today holds the
// rollup of sessions already closed today.
func NewTimerModel(session *models.Session, today ledger.Stats, loc *time.Location, now func() time.Time, stop StopFunc) TimerModel {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return TimerModel{
		session: session,
		today:   today,
		loc:     loc,
		now:     now,
		stop:    stop,
		elapsed: now().Sub(session.StartTime),
		shimmer: NewShimmer(),
		keys:    defaultTimerKeys,
		help:    help.New(),
	}
}

func timerTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return timerTickMsg(t) })
}

func animationTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return animationTickMsg(t) })
}

func (m TimerModel) Init() tea.Cmd {
	cmds := []tea.Cmd{timerTick()}
	if m.shimmer.Active() {
		cmds = append(cmds, animationTick(m.shimmer.Interval))
	}
	return tea.Batch(cmds...)
}

func (m TimerModel) done() bool {
	return m.stopping || m.exiting
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = m.now().Sub(m.session.StartTime)
		if m.done() {
			return m, nil
		}
		return m, timerTick()

	case animationTickMsg:
		m.frame = (m.frame + 1) % 4
		m.shimmer.Advance(time.Time(msg), len(headerText))
		if m.done() {
			return m, nil
		}
		return m, animationTick(m.shimmer.Interval)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case sessionStoppedMsg:
		m.stopped = msg.session
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			if m.stopping || m.stop == nil {
				return m, nil
			}
			m.stopping = true
			stop := m.stop
			return m, func() tea.Msg {
				s, err := stop()
				return sessionStoppedMsg{session: s, err: err}
			}
		case key.Matches(msg, m.keys.Exit), key.Matches(msg, m.keys.Quit):
			if m.stopping {
				return m, nil
			}
			m.exiting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

const headerText = "DEEP WORK IN PROGRESS"

func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.help.View(m.keys))
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTimerPanel(m.width, contentHeight), helpBar)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2
	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderTodayPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func (m TimerModel) renderTimerPanel(width, height int) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
	icons := []string{"⏱", "⏲", "⏱", "⏲"}

	var parts []string
	parts = append(parts, center.Render(fmt.Sprintf("%s  %s  %s", icons[m.frame], m.shimmer.Render(headerText), icons[m.frame])))

	var clock []string
	for _, line := range strings.Split(renderBigClock(m.elapsed), "\n") {
		clock = append(clock, center.Render(line))
	}
	parts = append(parts, strings.Join(clock, "\n"))

	status := fmt.Sprintf("Started at %s", m.session.StartTime.In(m.loc).Format("15:04:05"))
	if m.stopping {
		status = "Stopping..."
	}
	parts = append(parts, center.
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true).
		Render(status))

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(parts, "\n\n"))
}

func (m TimerModel) renderTodayPanel(width, height int) string {
	inner := width - 8
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(inner)
	var b strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(inner-4).
		Padding(0, 1)
	b.WriteString(center.Render(title.Render("📊 Today, " + m.now().In(m.loc).Format("02.01.2006"))))
	b.WriteString("\n\n")

	running := models.DurationMinutesBetween(m.session.StartTime, m.now())
	total := m.today.TotalMinutes + running

	lines := []string{
		fmt.Sprintf("✅ Closed sessions: %s", value(fmt.Sprintf("%d", m.today.SessionCount), countColor(m.today.SessionCount))),
		fmt.Sprintf("⏱ Tracked so far: %s", value(fmt.Sprintf("%dh %dm", m.today.Hours, m.today.Minutes), countColor(m.today.TotalMinutes))),
		fmt.Sprintf("🎯 With this session: %s", value(fmt.Sprintf("%dh %dm", total/60, total%60), goalColor(total))),
	}
	for _, l := range lines {
		b.WriteString(center.Render(l))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(center.Render(goalBar(total, min(inner-12, 40))))
	b.WriteString("\n")
	b.WriteString(center.
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true).
		Render("Goal: 4-6 hours of deep work a day"))

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func value(s, color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(s)
}

// countColor mutes values that are still zero.
func countColor(n int) string {
	if n == 0 {
		return ColorDisabledText
	}
	return ColorAccentBright
}

func goalColor(minutes int) string {
	switch {
	case minutes >= goalMinMinutes:
		return ColorSuccess
	case minutes >= goalMinMinutes/2:
		return ColorWarning
	default:
		return ColorSecondaryText
	}
}

// goalBar renders progress towards the upper goal; the lower goal is marked.
func goalBar(minutes, width int) string {
	if width < 10 {
		width = 10
	}
	filled := min(width, minutes*width/goalMaxMinutes)
	mark := goalMinMinutes * width / goalMaxMinutes

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i < filled:
			b.WriteString(value("█", goalColor(minutes)))
		case i == mark:
			b.WriteString(value("│", ColorAccentMain))
		default:
			b.WriteString(value("░", ColorBorder))
		}
	}
	return b.String()
}

var clockFont = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// clockText formats d as MM:SS, or HH:MM:SS from the first hour.
func clockText(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	mm := int(d.Minutes()) % 60
	ss := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mm, ss)
	}
	return fmt.Sprintf("%02d:%02d", mm, ss)
}

func renderBigClock(d time.Duration) string {
	var rows [5]strings.Builder
	for _, r := range clockText(d) {
		glyph := clockFont[r]
		for i := range rows {
			rows[i].WriteString(glyph[i])
			rows[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = style.Render(rows[i].String())
	}
	return strings.Join(out, "\n")
}

// TimerLedger is the part of the ledger the timer screen uses.
type TimerLedger interface {
	Status(ctx context.Context, userID int64) (*models.Session, error)
	Stop(ctx context.Context, userID int64) (*models.Session, error)
	TodayStats(ctx context.Context, userID int64) (ledger.Stats, error)
	Location() *time.Location
	Now() time.Time
}
