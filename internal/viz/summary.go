package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type metricFormat struct {
	label  string
	format func(float64) string
}

var metricFormats = map[string]metricFormat{
	"heater_kwh": {"heater energy", func(v float64) string { return fmt.Sprintf("%.3f kWh", v) }},
	"loss_kwh":   {"loss energy", func(v float64) string { return fmt.Sprintf("%.3f kWh", v) }},
	"draw_kwh":   {"draw energy", func(v float64) string { return fmt.Sprintf("%.3f kWh", v) }},
	"mean_power": {"mean power", func(v float64) string { return fmt.Sprintf("%.0f W", v) }},
	"saturation": {"time at P_max", func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) }},
	"iae":        {"IAE", func(v float64) string { return fmt.Sprintf("%.0f °C·s", v) }},
	"overshoot":  {"overshoot", func(v float64) string { return fmt.Sprintf("%.2f °C", v) }},
}

// FormatMetric renders a metric value with its unit.
func FormatMetric(name string, v float64) string {
	if f, ok := metricFormats[name]; ok {
		return f.format(v)
	}
	return fmt.Sprintf("%.4g", v)
}

// MetricLabelFor returns the display label of a metric.
func MetricLabelFor(name string) string {
	if f, ok := metricFormats[name]; ok {
		return f.label
	}
	return name
}

// Line is one label/value pair of a summary.
type Line struct {
	Label string
	Value string
}

// Summary renders a titled panel of label/value lines.
func Summary(title string, lines []Line) string {
	width := 0
	for _, l := range lines {
		width = max(width, lipgloss.Width(l.Label))
	}

	var b strings.Builder
	b.WriteString(Title.Render(title))
	for _, l := range lines {
		b.WriteString("\n")
		b.WriteString(MetricLabel.Render(l.Label + strings.Repeat(" ", width-lipgloss.Width(l.Label))))
		b.WriteString("  ")
		b.WriteString(MetricValue.Render(l.Value))
	}
	return Panel.Render(b.String())
}

// MetricLines lists metrics in the given order; names missing from values are skipped.
func MetricLines(values map[string]float64, order []string) []Line {
	lines := make([]Line, 0, len(order))
	for _, name := range order {
		v, ok := values[name]
		if !ok {
			continue
		}
		lines = append(lines, Line{Label: MetricLabelFor(name), Value: FormatMetric(name, v)})
	}
	return lines
}

// Row is one line of a comparison table.
type Row struct {
	Name    string
	Metrics map[string]float64
}

// Compare renders rows side by side with one column per metric. The row with the lowest
// value of highlight, if given, is marked.
func Compare(rows []Row, order []string, highlight string) string {
	best := -1
	if highlight != "" {
		for i, r := range rows {
			v, ok := r.Metrics[highlight]
			if !ok {
				continue
			}
			if best < 0 || v < rows[best].Metrics[highlight] {
				best = i
			}
		}
	}

	headers := []string{""}
	for _, name := range order {
		headers = append(headers, MetricLabelFor(name))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(CurrentTheme.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Bold(true).Foreground(CurrentTheme.Primary)
			case row == best:
				return style.Foreground(CurrentTheme.Good)
			case col == 0:
				return style.Foreground(CurrentTheme.Text)
			}
			return style.Foreground(CurrentTheme.Muted)
		})

	for _, r := range rows {
		cells := []string{r.Name}
		for _, name := range order {
			if v, ok := r.Metrics[name]; ok {
				cells = append(cells, FormatMetric(name, v))
			} else {
				cells = append(cells, "-")
			}
		}
		t.Row(cells...)
	}

	return t.String()
}
