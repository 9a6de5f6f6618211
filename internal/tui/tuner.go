package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/control"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/metrics"
	"github.com/san-kum/boilersim/internal/sim"
	"github.com/san-kum/boilersim/internal/viz"
)

type panel int

const (
	panelTemperature panel = iota
	panelPower
	panelTerms
	panelDraw
	panelCount
)

func (p panel) String() string {
	switch p {
	case panelTemperature:
		return "temperature"
	case panelPower:
		return "power"
	case panelTerms:
		return "PID terms"
	case panelDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// resultMsg carries a finished run back to the tuner. seq identifies the parameter
// revision it was computed for.
type resultMsg struct {
	seq  int
	traj *dynamo.Trajectory
	err  error
}

// Tuner is a bubbletea model that reruns the simulation whenever a parameter changes.
type Tuner struct {
	base   *config.Config
	cfg    *config.Config
	cursor int
	panel  panel

	seq     int
	running bool
	traj    *dynamo.Trajectory
	err     error

	width  int
	height int
}

func NewTuner(cfg *config.Config) *Tuner {
	return &Tuner{
		base:   cfg.Clone(),
		cfg:    cfg.Clone(),
		width:  100,
		height: 30,
	}
}

// Config returns a copy of the current parameters.
func (m *Tuner) Config() *config.Config { return m.cfg.Clone() }

func (m *Tuner) Init() tea.Cmd {
	return m.recompute()
}

// recompute starts a run of the current parameters.
func (m *Tuner) recompute() tea.Cmd {
	m.seq++
	m.running = true
	seq := m.seq
	cfg := m.cfg.Clone()

	return func() tea.Msg {
		return simulate(seq, cfg)
	}
}

func simulate(seq int, cfg *config.Config) resultMsg {
	d, err := cfg.Derive()
	if err != nil {
		return resultMsg{seq: seq, err: err}
	}
	s := sim.New(d.Params, d.Profile, d.Controller, d.AntiWindup,
		sim.Config{Dt: d.Dt, TotalTime: d.TotalTime},
		sim.WithMetrics(metrics.Standard(d.Params, d.Controller)...))
	traj, err := s.Run(context.Background())
	return resultMsg{seq: seq, traj: traj, err: err}
}

func (m *Tuner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.running = false
		m.err = msg.err
		if msg.err == nil {
			m.traj = msg.traj
		}
	}
	return m, nil
}

func (m *Tuner) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(config.Tunables)-1 {
			m.cursor++
		}
	case "left", "h":
		return m, m.nudge(-1)
	case "right", "l":
		return m, m.nudge(1)
	case "H":
		return m, m.nudge(-10)
	case "L":
		return m, m.nudge(10)
	case "tab":
		m.panel = (m.panel + 1) % panelCount
	case "shift+tab":
		m.panel = (m.panel + panelCount - 1) % panelCount
	case "a":
		m.cfg.Controller.AntiWindup = nextKind(m.cfg.Controller.AntiWindup).String()
		return m, m.recompute()
	case "r":
		m.cfg = m.base.Clone()
		return m, m.recompute()
	}
	return m, nil
}

func (m *Tuner) nudge(steps int) tea.Cmd {
	t := config.Tunables[m.cursor]
	old := t.Get(m.cfg)
	v := t.Range.Nudge(old, steps)
	if v == old {
		return nil
	}
	t.Set(m.cfg, v)
	return m.recompute()
}

func nextKind(name string) control.Kind {
	kinds := control.Kinds()
	current, err := control.ParseKind(name)
	if err != nil {
		return kinds[0]
	}
	for i, k := range kinds {
		if k == current {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}

func (m *Tuner) View() string {
	var b strings.Builder

	b.WriteString("\n  " + viz.Title.Render("boilersim tuner") + "  " +
		viz.Subtle.Render("anti-windup: "+m.cfg.Controller.AntiWindup) + "\n")
	b.WriteString("  " + viz.Separator(min(m.width-4, 72)) + "\n\n")

	for i, t := range config.Tunables {
		v := t.Get(m.cfg)
		pos := 0.0
		if span := t.Range.Max - t.Range.Min; span > 0 {
			pos = (v - t.Range.Min) / span
		}
		line := fmt.Sprintf("%-7s %8.1f %-6s", t.Name, v, t.Unit)
		if i == m.cursor {
			b.WriteString("  " + viz.Selected.Render("▸ "+line) + " " + viz.ProgressBar(pos, 20) + "\n")
		} else {
			b.WriteString("    " + viz.MetricLabel.Render(line) + " " + viz.ProgressBar(pos, 20) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString("  " + viz.Warning.Render(m.err.Error()) + "\n")
	case m.traj != nil:
		b.WriteString(indent(m.plot(), "  ") + "\n\n")
		b.WriteString("  " + m.metricsLine() + "\n")
	default:
		b.WriteString("  " + viz.Subtle.Render("simulating...") + "\n")
	}

	b.WriteString("\n  " + viz.KeyHint.Render("↑↓ select  ←→ adjust  H/L ×10  tab panel  a anti-windup  r reset  q quit") + "\n")
	return b.String()
}

func (m *Tuner) plot() string {
	opts := viz.PanelOptions{
		Width:        max(m.width-16, 30),
		Height:       max(m.height-len(config.Tunables)-14, 6),
		Setpoint:     m.cfg.Controller.TSet,
		ShowSetpoint: true,
	}
	switch m.panel {
	case panelPower:
		return viz.PowerPanel(m.traj, opts)
	case panelTerms:
		return viz.TermsPanel(m.traj, opts)
	case panelDraw:
		return viz.DrawPanel(m.traj, opts)
	default:
		return viz.TemperaturePanel(m.traj, opts)
	}
}

func (m *Tuner) metricsLine() string {
	parts := make([]string, 0, 4)
	for _, name := range []string{"overshoot", "iae", "heater_kwh", "saturation"} {
		if v, ok := m.traj.Metrics[name]; ok {
			parts = append(parts, viz.MetricLabel.Render(viz.MetricLabelFor(name)+" ")+viz.MetricValue.Render(viz.FormatMetric(name, v)))
		}
	}
	last := m.traj.Last()
	parts = append(parts, viz.MetricLabel.Render("final ")+viz.MetricValue.Render(fmt.Sprintf("%.2f °C", last.Temperature)))
	return strings.Join(parts, "   ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// Run starts the tuner full-screen and returns the parameters it ended with.
func Run(cfg *config.Config) (*config.Config, error) {
	m := NewTuner(cfg)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	if t, ok := final.(*Tuner); ok {
		return t.Config(), nil
	}
	return m.Config(), nil
}
