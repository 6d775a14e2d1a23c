package viz

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	canvasWidth     = 48
	canvasHeight    = 24
	historyCapacity = 60
	maxSpeed        = 1024
	minSpeed        = 1.0 / 64
)

// TickMsg drives the Model that scheduled it. Each Model has its own id, so a
// tick still in flight for a discarded Model is dropped.
type TickMsg struct {
	Time time.Time
	ID   int
}

var lastID int64

func nextID() int { return int(atomic.AddInt64(&lastID, 1)) }

// Options controls playback pacing. Speed is simulated time per wall-clock
// second; FPS is the redraw rate.
type Options struct {
	Name  string
	Speed float64
	FPS   int
}

// Model plays an engine back in simulated time. Pacing only decides when
// frames are drawn; events are applied exactly as a batch run would apply them.
type Model struct {
	id       int
	engine   *sim.Engine
	name     string
	speed    float64
	fps      int
	playTime float64
	running  bool
	done     bool
	err      error
	canvas   *Canvas
	states   []particle.State
	rate     []float64
	last     *sim.Event
	showHelp bool
}

func NewModel(e *sim.Engine, opts Options) Model {
	if opts.Speed <= 0 {
		opts.Speed = 10
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	m := Model{
		id:       nextID(),
		engine:   e,
		name:     opts.Name,
		speed:    opts.Speed,
		fps:      opts.FPS,
		playTime: e.Clock(),
		running:  true,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		states:   e.Particles(),
		rate:     make([]float64, 0, historyCapacity),
	}
	m.draw()
	return m
}

func (m Model) tick() tea.Cmd {
	id := m.id
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg{Time: t, ID: id}
	})
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.speed = math.Min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = math.Max(m.speed/2, minSpeed)
		case "n":
			m.skipToNextEvent()
			m.draw()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if msg.ID != m.id {
			return m, nil
		}
		if m.running && !m.done {
			m.advance(m.speed / float64(m.fps))
			m.draw()
		}
		if m.done {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

// advance moves playback forward by dt of simulated time, applying every
// event that falls inside the window before extrapolating to its end.
func (m *Model) advance(dt float64) {
	if m.done {
		return
	}
	m.playTime = math.Min(m.playTime+dt, m.engine.Config().Duration)

	applied := 0
	for {
		m.engine.DiscardStale()
		if m.engine.NextEventTime() > m.playTime {
			break
		}
		f, ok, err := m.engine.Step()
		if err != nil {
			m.err, m.done = err, true
			break
		}
		if !ok {
			m.done = true
			break
		}
		ev := f.Event
		m.last = &ev
		applied++
	}

	m.rate = append(m.rate, float64(applied))
	if len(m.rate) > historyCapacity {
		m.rate = m.rate[1:]
	}

	if m.done {
		m.states = m.engine.Particles()
		m.playTime = m.engine.Clock()
		return
	}
	m.states = m.engine.Extrapolate(m.playTime)
}

func (m *Model) skipToNextEvent() {
	if m.done {
		return
	}
	m.engine.DiscardStale()
	next := m.engine.NextEventTime()
	if math.IsInf(next, 1) {
		return
	}
	m.advance(next - m.playTime)
}

// draw renders the box and every particle at its current playback position.
func (m *Model) draw() {
	m.canvas.Clear()
	box := m.canvas.Fit(m.engine.Config().Width)
	m.canvas.DrawFrame(box)
	for _, s := range m.states {
		x, y := box.Point(s.X, s.Y)
		m.canvas.DrawCircle(x, y, box.Length(s.Radius))
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return "ERROR"
	case m.done:
		return "TERMINATED"
	case !m.running:
		return "PAUSED"
	}
	return "RUNNING"
}

func (m Model) View() string {
	th := CurrentTheme
	header := lipgloss.NewStyle().Foreground(th.Primary).Bold(true).MarginBottom(1)
	label := lipgloss.NewStyle().Foreground(th.Muted).Width(12)
	value := lipgloss.NewStyle().Foreground(th.Text)
	graph := lipgloss.NewStyle().Foreground(th.Accent).Padding(1, 0)
	help := lipgloss.NewStyle().Foreground(th.Muted).MarginTop(1)
	panel := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(th.Muted).Padding(1, 2).Width(44)

	stats := m.engine.Stats()
	row := func(k, v string) string { return label.Render(k) + value.Render(v) + "\n" }

	var s strings.Builder
	s.WriteString(header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(row("Time", fmt.Sprintf("%.3f / %g", m.playTime, m.engine.Config().Duration)))
	s.WriteString(row("Speed", fmt.Sprintf("%gx", m.speed)))
	s.WriteString(row("Particles", fmt.Sprintf("%d", m.engine.NumParticles())))
	s.WriteString(row("Pair", fmt.Sprintf("%d", stats.PairCollisions)))
	s.WriteString(row("Wall", fmt.Sprintf("%d", stats.WallCollisions)))
	s.WriteString(row("Stale", fmt.Sprintf("%d", stats.Stale)))
	s.WriteString(row("Queue", fmt.Sprintf("%d", m.engine.Pending())))
	s.WriteString(row("Energy", fmt.Sprintf("%.4f", particle.TotalKineticEnergy(m.states))))

	if m.last != nil {
		c := th.Wall
		if m.last.Kind == sim.KindPair {
			c = th.Pair
		}
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(c).Render(m.last.String()) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + m.err.Error() + "\n")
	}

	if len(m.rate) > 1 {
		chart := asciigraph.Plot(m.rate, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("events/frame"))
		s.WriteString(graph.Render(chart) + "\n")
	}

	if m.showHelp {
		s.WriteString(help.Render("SPACE pause/resume\n+/-   speed x2 / x0.5\nn     jump to next event\nt     cycle theme\nq     quit"))
	} else {
		s.WriteString(help.Render("SP:Pause +/-:Speed n:Next\nT:Theme ?:Help Q:Quit"))
	}

	canvasView := lipgloss.NewStyle().Padding(1, 2).Foreground(th.Primary).Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel.Render(s.String()))
}

// Done reports whether playback reached the termination event.
func (m Model) Done() bool { return m.done }

func (m Model) Err() error { return m.err }

// Run plays the engine in the terminal until the user quits.
func Run(e *sim.Engine, opts Options) error {
	final, err := tea.NewProgram(NewModel(e, opts)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
