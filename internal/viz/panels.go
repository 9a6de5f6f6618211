package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// PanelOptions sizes the terminal plots.
type PanelOptions struct {
	Width        int
	Height       int
	Setpoint     float64 // drawn on the temperature panel when ShowSetpoint is set
	ShowSetpoint bool
}

func DefaultPanelOptions() PanelOptions {
	return PanelOptions{Width: 80, Height: 10}
}

// Panels renders the four stacked plots of a run: tank temperature, heater power, the PID
// terms and the hot-water draw.
func Panels(traj *dynamo.Trajectory, opts PanelOptions) string {
	if traj.Len() < 2 {
		return ""
	}
	panels := []string{
		TemperaturePanel(traj, opts),
		PowerPanel(traj, opts),
		TermsPanel(traj, opts),
		DrawPanel(traj, opts),
	}
	return strings.Join(panels, "\n\n")
}

func (o PanelOptions) plotOptions(caption string, colors ...asciigraph.AnsiColor) []asciigraph.Option {
	opts := []asciigraph.Option{
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
		asciigraph.Precision(1),
	}
	if len(colors) > 0 {
		opts = append(opts, asciigraph.SeriesColors(colors...))
	}
	return opts
}

func TemperaturePanel(traj *dynamo.Trajectory, opts PanelOptions) string {
	temps := traj.Temperatures()
	if !opts.ShowSetpoint {
		return asciigraph.Plot(temps, opts.plotOptions("temperature (°C) vs time", CurrentTheme.Temperature)...)
	}

	setpoint := make([]float64, len(temps))
	for i := range setpoint {
		setpoint[i] = opts.Setpoint
	}
	caption := fmt.Sprintf("temperature (°C) vs time, setpoint %.1f °C", opts.Setpoint)
	return asciigraph.PlotMany([][]float64{temps, setpoint},
		opts.plotOptions(caption, CurrentTheme.Temperature, asciigraph.Default)...)
}

func PowerPanel(traj *dynamo.Trajectory, opts PanelOptions) string {
	o := opts.plotOptions("heater power (W) vs time", CurrentTheme.Power)
	o = append(o, asciigraph.LowerBound(0))
	return asciigraph.Plot(traj.Powers(), o...)
}

// TermsPanel overlays the P, I and D contributions.
func TermsPanel(traj *dynamo.Trajectory, opts PanelOptions) string {
	c := CurrentTheme.Terms
	return asciigraph.PlotMany([][]float64{traj.PTerms(), traj.ITerms(), traj.DTerms()},
		opts.plotOptions("PID terms (W): P, I, D", c[0], c[1], c[2])...)
}

func DrawPanel(traj *dynamo.Trajectory, opts PanelOptions) string {
	flows := traj.Flows()
	lpm := make([]float64, len(flows))
	for i, q := range flows {
		lpm[i] = q * 60
	}
	o := opts.plotOptions("hot water draw (L/min) vs time", CurrentTheme.Draw)
	o = append(o, asciigraph.LowerBound(0))
	return asciigraph.Plot(lpm, o...)
}
