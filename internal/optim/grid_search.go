// Package optim searches controller tunings for the one that minimizes a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/metrics"
	"github.com/san-kum/boilersim/internal/sim"
)

// MaxCandidates bounds the size of a grid.
const MaxCandidates = 10000

var ErrEmptyGrid = errors.New("optim: empty grid")

// Axis is one searched parameter.
type Axis struct {
	Name   string
	Values []float64
	Set    func(*config.Config, float64)
}

// NewAxis builds an axis over a tunable parameter such as "Kp", "Ti" or "Td".
func NewAxis(name string, values []float64) (Axis, error) {
	t, ok := config.LookupTunable(name)
	if !ok {
		return Axis{}, fmt.Errorf("optim: unknown parameter %q", name)
	}
	if len(values) == 0 {
		return Axis{}, fmt.Errorf("optim: no values for %s", t.Name)
	}
	return Axis{Name: t.Name, Values: values, Set: t.Set}, nil
}

// ParseAxis parses "name=v1,v2,..." or "name=from:to:step".
func ParseAxis(spec string) (Axis, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok {
		return Axis{}, fmt.Errorf("optim: axis %q: expected name=values", spec)
	}

	var values []float64
	if parts := strings.Split(list, ":"); len(parts) == 3 {
		var bounds [3]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Axis{}, fmt.Errorf("optim: axis %q: %w", spec, err)
			}
			bounds[i] = v
		}
		var err error
		if values, err = Linspace(bounds[0], bounds[1], bounds[2]); err != nil {
			return Axis{}, fmt.Errorf("optim: axis %q: %w", spec, err)
		}
	} else {
		for _, p := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Axis{}, fmt.Errorf("optim: axis %q: %w", spec, err)
			}
			values = append(values, v)
		}
	}
	return NewAxis(strings.TrimSpace(name), values)
}

// Linspace returns from, from+step, ... up to and including to.
func Linspace(from, to, step float64) ([]float64, error) {
	if step <= 0 || to < from {
		return nil, fmt.Errorf("invalid range %g:%g:%g", from, to, step)
	}
	n := int(math.Floor((to-from)/step+1e-9)) + 1
	if n > MaxCandidates {
		return nil, fmt.Errorf("range %g:%g:%g has more than %d values", from, to, step, MaxCandidates)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out, nil
}

// Candidate is one evaluated point of the grid.
type Candidate struct {
	Params  map[string]float64
	Value   float64
	Metrics map[string]float64
	Err     error // configuration rejected; Value is +Inf
}

// Result holds every candidate in grid order and the index of the best one.
type Result struct {
	Metric     string
	Candidates []Candidate
	Best       int
}

func (r *Result) BestCandidate() Candidate { return r.Candidates[r.Best] }

type GridSearch struct {
	axes    []Axis
	metric  string
	workers int
}

// NewGridSearch minimizes metric over the cartesian product of axes. workers bounds the
// number of parallel runs; 0 means one per CPU.
func NewGridSearch(metric string, workers int, axes ...Axis) (*GridSearch, error) {
	if !metrics.Valid(metric) {
		return nil, fmt.Errorf("optim: unknown metric %q", metric)
	}
	if len(axes) == 0 {
		return nil, ErrEmptyGrid
	}
	size := 1
	for _, a := range axes {
		size *= len(a.Values)
		if size == 0 {
			return nil, ErrEmptyGrid
		}
		if size > MaxCandidates {
			return nil, fmt.Errorf("optim: grid has more than %d candidates", MaxCandidates)
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &GridSearch{axes: axes, metric: metric, workers: workers}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	size := 1
	for _, a := range g.axes {
		size *= len(a.Values)
	}
	return size
}

// Search runs every grid point derived from base and keeps only the metrics of each run.
// Points whose configuration is rejected are kept with their error; ties go to the earlier
// point.
func (g *GridSearch) Search(ctx context.Context, base *config.Config) (*Result, error) {
	res := &Result{Metric: g.metric, Candidates: make([]Candidate, 0, g.Size()), Best: -1}

	var sims []*sim.Simulator
	var index []int

	g.walk(0, make(map[string]float64, len(g.axes)), func(params map[string]float64) {
		cfg := base.Clone()
		for _, a := range g.axes {
			a.Set(cfg, params[a.Name])
		}

		c := Candidate{Params: params, Value: math.Inf(1)}
		d, err := cfg.Derive()
		if err != nil {
			c.Err = err
			res.Candidates = append(res.Candidates, c)
			return
		}
		res.Candidates = append(res.Candidates, c)
		index = append(index, len(res.Candidates)-1)
		sims = append(sims, sim.New(d.Params, d.Profile, d.Controller, d.AntiWindup,
			sim.Config{Dt: d.Dt, TotalTime: d.TotalTime},
			sim.WithMetrics(metrics.Standard(d.Params, d.Controller)...)))
	})

	values, err := sim.RunMetrics(ctx, sims, g.workers)
	if err != nil {
		return nil, err
	}

	for i, m := range values {
		c := &res.Candidates[index[i]]
		c.Metrics = m
		c.Value = m[g.metric]
		if res.Best < 0 || c.Value < res.Candidates[res.Best].Value {
			res.Best = index[i]
		}
	}

	if res.Best < 0 {
		return nil, fmt.Errorf("optim: no valid candidate: %w", res.Candidates[0].Err)
	}
	return res, nil
}

func (g *GridSearch) walk(depth int, current map[string]float64, visit func(map[string]float64)) {
	if depth == len(g.axes) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		visit(params)
		return
	}

	a := g.axes[depth]
	for _, v := range a.Values {
		current[a.Name] = v
		g.walk(depth+1, current, visit)
	}
}
