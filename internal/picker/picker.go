// Package picker is the terminal multi-select used to choose which demos to
// validate.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts the selection.
var ErrCancelled = errors.New("operation cancelled")

// AllLabel is the first row; selecting it selects every demo.
const AllLabel = "All demos"

// Option is one selectable demo.
type Option struct {
	Value string
	Label string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	errorLineText = "Select at least one demo"
)

type keymap struct {
	Up,
	Down,
	Toggle,
	All,
	Confirm,
	Cancel key.Binding
}

// FullHelp implements help.KeyMap.
func (k keymap) FullHelp() [][]key.Binding {
	return nil
}

// ShortHelp implements help.KeyMap.
func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↓↑", "navigate"),
		),
		k.Toggle,
		k.All,
		k.Confirm,
		k.Cancel,
	}
}

func defaultKeymap() keymap {
	return keymap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "esc", "q"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model is the bubbletea model of the picker. Row 0 is the "All demos" row.
type Model struct {
	title     string
	options   []Option
	cursor    int
	checked   map[int]bool
	done      bool
	cancelled bool
	empty     bool
	keymap    keymap
	help      help.Model
}

// New returns a picker over options.
func New(title string, options []Option) Model {
	return Model{
		title:   title,
		options: options,
		checked: map[int]bool{},
		keymap:  defaultKeymap(),
		help:    help.New(),
	}
}

func (m Model) rows() int {
	return len(m.options) + 1
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keymap.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keymap.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keymap.Toggle):
		m.checked[m.cursor] = !m.checked[m.cursor]
		m.empty = false
	case key.Matches(keyMsg, m.keymap.All):
		m.checked[0] = !m.checked[0]
		m.empty = false
	case key.Matches(keyMsg, m.keymap.Confirm):
		if len(m.Selected()) == 0 {
			m.empty = true
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i := 0; i < m.rows(); i++ {
		label := AllLabel
		if i > 0 {
			label = m.options[i-1].Label
		}
		box := "[ ]"
		if m.checked[i] || (i > 0 && m.checked[0]) {
			box = checkedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", box, label)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if m.empty {
		b.WriteString("\n" + errorLineText + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keymap))
	return b.String()
}

// Selected returns the chosen option values in list order.
func (m Model) Selected() []string {
	var out []string
	for i, opt := range m.options {
		if m.checked[0] || m.checked[i+1] {
			out = append(out, opt.Value)
		}
	}
	return out
}

// Cancelled reports whether the user aborted.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Run shows the picker on in/out and returns the chosen values.
func Run(ctx context.Context, title string, options []Option, in io.Reader, out io.Writer) ([]string, error) {
	p := tea.NewProgram(New(title, options),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok || m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}
