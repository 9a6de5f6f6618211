package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/control"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/export"
	"github.com/san-kum/boilersim/internal/logger"
	"github.com/san-kum/boilersim/internal/metrics"
	"github.com/san-kum/boilersim/internal/optim"
	"github.com/san-kum/boilersim/internal/physics"
	"github.com/san-kum/boilersim/internal/sim"
	"github.com/san-kum/boilersim/internal/tui"
	"github.com/san-kum/boilersim/internal/viz"
)

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

// build derives a simulator with the standard metrics.
func build(cfg *config.Config, opts ...sim.Option) (*sim.Simulator, *config.Derived, error) {
	d, err := cfg.Derive()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, sim.WithMetrics(metrics.Standard(d.Params, d.Controller)...))
	s := sim.New(d.Params, d.Profile, d.Controller, d.AntiWindup, sim.Config{Dt: d.Dt, TotalTime: d.TotalTime}, opts...)
	logger.Info("simulator: %s", s)
	return s, d, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var opts []sim.Option
	var renderer *tui.LiveRenderer
	if live {
		renderer = tui.NewLiveRenderer(cmd.OutOrStdout(), cfg.Controller.TSet, cfg.Controller.PMax, cfg.Run.TotalTime)
		renderer.Speed = speed
		opts = append(opts, sim.WithObserver(renderer))
	}

	s, d, err := build(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if renderer != nil {
		renderer.Start()
		defer renderer.Stop()
	}

	start := time.Now()
	traj, err := s.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("simulated %d samples in %v", traj.Len(), time.Since(start))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Summary("parameters", parameterLines(cfg, d)))
	fmt.Fprintln(out, viz.Summary("result", resultLines(traj, d)))

	if plot {
		fmt.Fprintln(out)
		fmt.Fprintln(out, viz.Panels(traj, panelOptions(cfg)))
	}

	return writeOutputs(cfg, traj)
}

func writeOutputs(cfg *config.Config, traj *dynamo.Trajectory) error {
	if csvPath != "" {
		if err := writeFile(csvPath, func(f *os.File) error {
			return export.WriteCSV(f, traj, export.CSVOptions{Energy: true})
		}); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		if err := writeFile(jsonPath, func(f *os.File) error {
			return export.WriteJSON(f, traj, cfg)
		}); err != nil {
			return err
		}
	}
	if svgPath != "" {
		if err := writeFile(svgPath, func(f *os.File) error {
			return export.WriteSVG(f, traj, svgColumn, export.DefaultSVGOptions())
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote %s", path)
	return nil
}

func panelOptions(cfg *config.Config) viz.PanelOptions {
	return viz.PanelOptions{
		Width:        width,
		Height:       height,
		Setpoint:     cfg.Controller.TSet,
		ShowSetpoint: true,
	}
}

func parameterLines(cfg *config.Config, d *config.Derived) []viz.Line {
	return []viz.Line{
		{Label: "tank", Value: fmt.Sprintf("%.0f L, C=%.0f J/°C, k_loss=%.3f W/°C", cfg.Tank.VolumeL, d.Params.C, d.Params.KLoss)},
		{Label: "controller", Value: fmt.Sprintf("T_set=%.1f °C Kp=%g Ti=%g s Td=%g s P_max=%g W", d.Controller.TSet, d.Controller.Kp, d.Controller.Ti, d.Controller.Td, d.Controller.PMax)},
		{Label: "anti-windup", Value: d.AntiWindup.Kind().String()},
		{Label: "draw", Value: describeDraw(cfg.Draw)},
		{Label: "time", Value: fmt.Sprintf("dt=%g s, %g s", d.Dt, d.TotalTime)},
	}
}

func describeDraw(dc config.DrawConfig) string {
	switch dc.Profile {
	case "none":
		return "none"
	case "constant":
		return fmt.Sprintf("%.1f L/min constant", dc.FlowLPerMin)
	case "schedule":
		parts := make([]string, len(dc.Windows))
		for i, w := range dc.Windows {
			parts[i] = fmt.Sprintf("%.1f L/min %g–%g s", w.FlowLPerMin, w.StartS, w.EndS)
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%.1f L/min %g–%g s", dc.FlowLPerMin, dc.StartS, dc.EndS)
	}
}

func resultLines(traj *dynamo.Trajectory, d *config.Derived) []viz.Line {
	last := traj.Last()
	lines := []viz.Line{
		{Label: "final temperature", Value: fmt.Sprintf("%.2f °C", last.Temperature)},
		{Label: "final power", Value: fmt.Sprintf("%.0f W", last.Power)},
	}
	if eq, ok := physics.Equilibrium(last.Power, last.QOut, d.Params); ok {
		lines = append(lines, viz.Line{Label: "equilibrium at final power", Value: fmt.Sprintf("%.2f °C", eq)})
	}
	return append(lines, viz.MetricLines(traj.Metrics, metrics.Names)...)
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var traj *dynamo.Trajectory
	if fromCSV != "" {
		traj, err = export.LoadCSV(fromCSV)
		if err != nil {
			return err
		}
		logger.Info("loaded %d samples from %s", traj.Len(), fromCSV)
	} else {
		s, _, err := build(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd)
		defer cancel()
		if traj, err = s.Run(ctx); err != nil {
			return err
		}
	}

	if traj.Len() < 2 {
		return errors.New("nothing to plot: fewer than two samples")
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.Panels(traj, panelOptions(cfg)))
	return nil
}

func compareStrategies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	kinds := control.Kinds()
	sims := make([]*sim.Simulator, len(kinds))
	for i, kind := range kinds {
		c := cfg.Clone()
		c.Controller.AntiWindup = kind.String()
		if sims[i], _, err = build(c); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	start := time.Now()
	trajs, err := sim.RunAll(ctx, sims, 0)
	if err != nil {
		return err
	}
	logger.Info("ran %d policies in %v", len(trajs), time.Since(start))

	rows := make([]viz.Row, len(kinds))
	for i, kind := range kinds {
		rows[i] = viz.Row{Name: kind.String(), Metrics: trajs[i].Metrics}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Compare(rows, metrics.Names, highlight))

	if plot {
		opts := panelOptions(cfg)
		for i, kind := range kinds {
			fmt.Fprintln(out)
			fmt.Fprintln(out, viz.Title.Render(kind.String()))
			fmt.Fprintln(out, viz.TemperaturePanel(trajs[i], opts))
		}
	}
	return nil
}

func sweepGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	parsed := make([]optim.Axis, 0, len(axes))
	for _, spec := range axes {
		a, err := optim.ParseAxis(spec)
		if err != nil {
			return err
		}
		parsed = append(parsed, a)
	}

	g, err := optim.NewGridSearch(metric, workers, parsed...)
	if err != nil {
		return err
	}
	logger.Info("sweeping %d candidates minimizing %s", g.Size(), metric)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	start := time.Now()
	res, err := g.Search(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("sweep finished in %v", time.Since(start))

	order := make([]int, 0, len(res.Candidates))
	for i, c := range res.Candidates {
		if c.Err != nil {
			logger.Warn("skipped %s: %v", formatParams(c.Params), c.Err)
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return res.Candidates[order[a]].Value < res.Candidates[order[b]].Value
	})
	if top > 0 && len(order) > top {
		order = order[:top]
	}

	rows := make([]viz.Row, len(order))
	for i, idx := range order {
		c := res.Candidates[idx]
		rows[i] = viz.Row{Name: formatParams(c.Params), Metrics: c.Metrics}
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.Compare(rows, metrics.Names, metric))

	if savePath != "" {
		best := cfg.Clone()
		for _, a := range parsed {
			a.Set(best, res.BestCandidate().Params[a.Name])
		}
		if err := config.Save(savePath, best); err != nil {
			return err
		}
		logger.Info("wrote best configuration to %s", savePath)
	}
	return nil
}

func formatParams(params map[string]float64) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, params[name])
	}
	return strings.Join(parts, " ")
}

func runTuner(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	final, err := tui.Run(cfg)
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := config.Save(savePath, final); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", savePath)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	lines := make([]viz.Line, 0, len(config.Presets))
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		lines = append(lines, viz.Line{
			Label: name,
			Value: fmt.Sprintf("T_set=%g Kp=%g Ti=%g Td=%g P_max=%g  %g L  draw: %s",
				c.Controller.TSet, c.Controller.Kp, c.Controller.Ti, c.Controller.Td, c.Controller.PMax,
				c.Tank.VolumeL, describeDraw(c.Draw)),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.Summary("presets", lines))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "boilersim.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s exists (use --force to overwrite)", path)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := cfg.Derive()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), viz.Summary("parameters", parameterLines(cfg, d)))
	return nil
}
