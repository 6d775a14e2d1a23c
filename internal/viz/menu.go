package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/particlesim/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Loader builds a fresh engine for the named scenario.
type Loader func(name string) (*sim.Engine, Options, error)

// Menu lists scenarios and hands the chosen one to a live Model.
type Menu struct {
	names  []string
	cursor int
	load   Loader
	live   *Model
	err    error
}

func NewMenu(names []string, load Loader) Menu {
	return Menu{names: names, load: load}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			m.live = nil
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		lm := next.(Model)
		m.live = &lm
		return m, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.names) == 0 {
			return m, nil
		}
		e, opts, err := m.load(m.names[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		lm := NewModel(e, opts)
		m.live = &lm
		return m, lm.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View() + "\n" + dim.Render("esc: back to scenarios")
	}

	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("PARTICLESIM") + "\n")
	b.WriteString(dim.Render("elastic collisions in a box") + "\n\n")
	for i, name := range m.names {
		if i == m.cursor {
			b.WriteString(yellow.Render("> "+name) + "\n")
		} else {
			b.WriteString(white.Render("  "+name) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + yellow.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
	}
	b.WriteString("\n" + dim.Render("↑↓ select  enter run  q quit"))
	return b.String()
}

// RunMenu starts the scenario picker.
func RunMenu(names []string, load Loader) error {
	_, err := tea.NewProgram(NewMenu(names, load)).Run()
	return err
}
