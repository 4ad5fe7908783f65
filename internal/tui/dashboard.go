// Package tui is a live terminal dashboard for one driver: state, tyre
// contact and a trace of one channel, with pause and speed controls.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/testbed"
	"github.com/san-kum/dronesim/internal/tyre"
	"github.com/san-kum/dronesim/internal/vecmath"
)

const (
	frameInterval = 16 * time.Millisecond
	historyLen    = 120
	maxSpeed      = 16.0
	minSpeed      = 0.25
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Dashboard is a bubbletea model. Each frame advances the driver by
// frameInterval of simulated time, scaled by the speed multiplier.
type Dashboard struct {
	driver   *testbed.Driver
	sw       *testbed.Stopwatch
	dt       float64
	duration float64
	channel  func(metrics.Sample) float64

	speed   float64
	last    metrics.Sample
	history []float64
	err     error
	done    bool
}

// NewDashboard drives d with ticks of dt until duration.
func NewDashboard(d *testbed.Driver, dt, duration float64) (*Dashboard, error) {
	sw, err := testbed.NewStopwatch(frameInterval.Seconds())
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, dynamo.InvalidArgument("dashboard needs a driver")
	}
	if !vecmath.IsFinite(dt) || dt <= 0 {
		return nil, dynamo.InvalidArgument("dt must be finite and positive, got %g", dt)
	}
	return &Dashboard{
		driver:   d,
		sw:       sw,
		dt:       dt,
		duration: duration,
		channel:  func(s metrics.Sample) float64 { return s.State.Position.Y },
		speed:    1,
		last:     d.Sample(),
		history:  make([]float64, 0, historyLen),
	}, nil
}

func (m *Dashboard) Init() tea.Cmd { return tick() }

func (m *Dashboard) Err() error { return m.err }

func (m *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tickMsg:
		m.advance()
		if m.done {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m *Dashboard) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case " ", "p":
		m.sw.SetPaused(!m.sw.Paused())
	case "+", "=":
		m.setSpeed(math.Min(m.speed*2, maxSpeed))
	case "-", "_":
		m.setSpeed(math.Max(m.speed/2, minSpeed))
	case "0":
		m.setSpeed(1)
	}
	return nil
}

func (m *Dashboard) setSpeed(s float64) {
	if err := m.sw.SetSpeedMultiplier(s); err == nil {
		m.speed = s
	}
}

// advance runs as many driver ticks as the frame's simulated time covers.
func (m *Dashboard) advance() {
	if m.done {
		return
	}
	budget := m.sw.Tick()
	ctx := context.Background()
	for budget > 1e-12 && !m.done {
		step := math.Min(m.dt, budget)
		s, err := m.driver.Tick(ctx, step)
		if err != nil {
			m.err = err
			m.done = true
			return
		}
		budget -= step
		m.last = s
		m.record(s)
		if s.Time >= m.duration-1e-9 {
			m.done = true
		}
	}
}

func (m *Dashboard) record(s metrics.Sample) {
	if len(m.history) == historyLen {
		copy(m.history, m.history[1:])
		m.history = m.history[:historyLen-1]
	}
	m.history = append(m.history, m.channel(s))
}

func row(name string, v float64, unit string) string {
	return label.Render(fmt.Sprintf("%-8s", name)) + value.Render(fmt.Sprintf("%9.3f", v)) + " " + label.Render(unit)
}

func (m *Dashboard) View() string {
	s := m.last
	st := s.State

	var status string
	switch {
	case m.err != nil:
		status = failed.Render("FAILED: " + m.err.Error())
	case m.done:
		status = running.Render("DONE")
	case m.sw.Paused():
		status = paused.Render("PAUSED")
	default:
		status = running.Render("RUNNING")
	}

	head := fmt.Sprintf("%s  %s  t=%.2fs  step %d  x%.2f",
		title.Render("dronesim "+m.driver.Drone().ID()), status, s.Time, s.Step, m.speed)

	left := strings.Join([]string{
		row("x", st.Position.X, "m"),
		row("y", st.Position.Y, "m"),
		row("z", st.Position.Z, "m"),
		row("speed", st.Velocity.Norm(), "m/s"),
		row("heading", st.Heading, "rad"),
		row("pitch", st.Pitch, "rad"),
		row("roll", st.Roll, "rad"),
	}, "\n")

	wheels := make([]string, 0, len(tyre.Roles)+1)
	for i, r := range tyre.Roles {
		mark := label.Render("air")
		if s.Depths[i] > 0 {
			mark = running.Render("gnd")
		}
		wheels = append(wheels, fmt.Sprintf("%-11s %s %s", r.String(), mark, value.Render(fmt.Sprintf("%.4f m", s.Depths[i]))))
	}
	wheels = append(wheels, row("thrust", s.Outputs.Thrust, "N"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, panel.Render(left), panel.Render(strings.Join(wheels, "\n")))

	graph := ""
	if len(m.history) > 1 {
		graph = asciigraph.Plot(m.history, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("height (m)"))
	}

	keys := hint.Render("space pause  +/- speed  0 reset speed  q quit")
	return strings.Join([]string{head, body, graph, keys}, "\n")
}

// Run shows the dashboard until the user quits.
func Run(d *testbed.Driver, dt, duration float64) error {
	m, err := NewDashboard(d, dt, duration)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return m.Err()
}
