package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/deepwork/internal/parser"
)

// BirthdayModel asks for a birth date in DD.MM.YYYY.
type BirthdayModel struct {
	input  textinput.Model
	width  int
	height int

	validationErr string
	value         string
	completed     bool
	cancelled     bool
}

// NewBirthdayModel creates the prompt, prefilled with current when set.
func NewBirthdayModel(current string) BirthdayModel {
	in := textinput.New()
	in.Placeholder = "DD.MM.YYYY, e.g. 15.03.1990"
	in.CharLimit = 10
	in.Width = 30
	in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
	in.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	in.SetValue(current)
	in.Focus()
	return BirthdayModel{input: in}
}

func (m BirthdayModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m BirthdayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if _, err := parser.ParseDate(text); err != nil {
				m.validationErr = "Invalid date. Use DD.MM.YYYY"
				return m, nil
			}
			m.value = text
			m.completed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.validationErr = ""
	return m, cmd
}

func (m BirthdayModel) View() string {
	if m.completed || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Render("🎂 Set your birth date"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.validationErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("⚠ " + m.validationErr))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Render("enter save · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2).
		Render(b.String())
}

// Value returns the accepted input, or "" when the prompt was cancelled.
func (m BirthdayModel) Value() string {
	return m.value
}
