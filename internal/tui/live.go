package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/viz"
)

const (
	barWidth    = 40
	historySize = 60
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws a small dashboard while a run is in progress. It is a
// dynamo.Observer; frames are drawn every Every simulated seconds, and when Speed is set
// the run is paced to Speed simulated seconds per wall-clock second.
type LiveRenderer struct {
	out      io.Writer
	setpoint float64
	pMax     float64
	total    float64

	Every float64
	Speed float64

	nextFrame float64
	lastWall  time.Time
	lastTime  float64
	history   []float64
	sleep     func(time.Duration)
}

func NewLiveRenderer(out io.Writer, setpoint, pMax, total float64) *LiveRenderer {
	return &LiveRenderer{
		out:      out,
		setpoint: setpoint,
		pMax:     pMax,
		total:    total,
		Every:    60,
		history:  make([]float64, 0, historySize),
		sleep:    time.Sleep,
	}
}

func (r *LiveRenderer) OnSample(s dynamo.Sample) {
	if s.Time < r.nextFrame && s.Time < r.total {
		return
	}
	r.nextFrame = s.Time + r.Every

	r.history = append(r.history, s.Temperature)
	if len(r.history) > historySize {
		r.history = r.history[1:]
	}

	r.pace(s.Time)
	fmt.Fprint(r.out, r.frame(s))
}

func (r *LiveRenderer) pace(t float64) {
	if r.Speed <= 0 {
		return
	}
	now := time.Now()
	if !r.lastWall.IsZero() {
		want := time.Duration((t - r.lastTime) / r.Speed * float64(time.Second))
		if elapsed := now.Sub(r.lastWall); elapsed < want {
			r.sleep(want - elapsed)
		}
	}
	r.lastWall = time.Now()
	r.lastTime = t
}

func (r *LiveRenderer) frame(s dynamo.Sample) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(viz.Title.Render("boilersim") + "  " + viz.Subtle.Render(fmt.Sprintf("t=%.0fs / %.0fs", s.Time, r.total)) + "\n")
	b.WriteString(viz.Separator(barWidth+24) + "\n")

	progress := 0.0
	if r.total > 0 {
		progress = s.Time / r.total
	}
	fmt.Fprintf(&b, "  %-12s %s\n", "progress", viz.ProgressBar(progress, barWidth))

	heat := 0.0
	if r.pMax > 0 {
		heat = s.Power / r.pMax
	}
	fmt.Fprintf(&b, "  %-12s %s %s\n", "heater", viz.ProgressBar(heat, barWidth), viz.MetricValue.Render(fmt.Sprintf("%.0f W", s.Power)))

	fmt.Fprintf(&b, "  %-12s %s  %s\n", "temperature",
		viz.MetricValue.Render(fmt.Sprintf("%.2f °C", s.Temperature)),
		viz.Subtle.Render(fmt.Sprintf("setpoint %.1f °C", r.setpoint)))
	fmt.Fprintf(&b, "  %-12s %s\n", "history", viz.SparklineChart(r.history, historySize))
	fmt.Fprintf(&b, "  %-12s %s\n", "draw", viz.MetricValue.Render(fmt.Sprintf("%.1f L/min", s.QOut*60)))
	fmt.Fprintf(&b, "  %-12s P=%.0f I=%.0f D=%.0f\n", "terms", s.PTerm, s.ITerm, s.DTerm)

	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
