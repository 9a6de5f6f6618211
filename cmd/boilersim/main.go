package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/logger"
	"github.com/san-kum/boilersim/internal/viz"
)

var (
	configFile string
	presetName string
	envFile    string
	logLevel   string
	theme      string

	// config overrides, applied only when the flag is set
	tSet        float64
	kp          float64
	ti          float64
	td          float64
	pMax        float64
	volume      float64
	flow        float64
	showerStart float64
	showerEnd   float64
	profile     string
	antiWindup  string
	dt          float64
	totalTime   float64

	// output
	plot      bool
	csvPath   string
	jsonPath  string
	svgPath   string
	svgColumn string
	width     int
	height    int
	live      bool
	speed     float64

	// plot
	fromCSV string

	// compare and sweep
	highlight string
	axes      []string
	metric    string
	workers   int
	top       int

	savePath string
	force    bool
)

// main registers the boilersim commands and exits with status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "boilersim",
		Short:         "hot-water boiler simulation with PID heater control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			viz.SetTheme(theme)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml or json)")
	rootCmd.PersistentFlags().StringVarP(&presetName, "preset", "p", "", "start from a preset configuration")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load BOILERSIM_* variables from a .env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeEmber.Name, "color theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addOverrideFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "show terminal plots")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write samples as csv")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write samples, config and metrics as json")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write an svg chart")
	runCmd.Flags().StringVar(&svgColumn, "svg-column", "temperature", "column charted by --svg")
	runCmd.Flags().BoolVar(&live, "live", false, "show a live dashboard while running")
	runCmd.Flags().Float64Var(&speed, "speed", 0, "live pacing in simulated seconds per second (0 = as fast as possible)")
	addPlotSizeFlags(runCmd)

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot temperature, power, PID terms and draw",
		Args:  cobra.NoArgs,
		RunE:  plotRun,
	}
	addOverrideFlags(plotCmd)
	addPlotSizeFlags(plotCmd)
	plotCmd.Flags().StringVar(&fromCSV, "from", "", "plot a csv written by run --csv instead of simulating")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run every anti-windup policy on the same configuration",
		Args:  cobra.NoArgs,
		RunE:  compareStrategies,
	}
	addOverrideFlags(compareCmd)
	compareCmd.Flags().StringVar(&highlight, "highlight", "overshoot", "metric whose lowest row is highlighted")
	compareCmd.Flags().BoolVar(&plot, "plot", false, "show the temperature of each policy")
	addPlotSizeFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over controller gains",
		Example: `  boilersim sweep --axis kp=50:300:50 --axis ti=200:1000:200 --metric iae
  boilersim sweep -p shower --axis td=0,25,50,100 --metric overshoot`,
		Args: cobra.NoArgs,
		RunE: sweepGains,
	}
	addOverrideFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&axes, "axis", []string{"kp=50:300:50", "ti=200:1000:200"}, "searched parameter, name=from:to:step or name=v1,v2,...")
	sweepCmd.Flags().StringVar(&metric, "metric", "iae", "metric to minimize")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per CPU)")
	sweepCmd.Flags().IntVar(&top, "top", 5, "candidates to show")
	sweepCmd.Flags().StringVar(&savePath, "save", "", "write the best configuration to a yaml file")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "interactive tuner",
		Args:  cobra.NoArgs,
		RunE:  runTuner,
	}
	addOverrideFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&savePath, "save", "", "write the final configuration to a yaml file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	addOverrideFlags(initCmd)
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "print the effective configuration and derived parameters",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	}
	addOverrideFlags(showCmd)
	configCmd.AddCommand(initCmd, showCmd)

	rootCmd.AddCommand(runCmd, plotCmd, compareCmd, sweepCmd, tuneCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addOverrideFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&tSet, "t-set", config.DefaultTSet, "setpoint temperature (°C)")
	f.Float64Var(&kp, "kp", config.DefaultKp, "proportional gain (W/°C)")
	f.Float64Var(&ti, "ti", config.DefaultTi, "integral time (s), 0 disables")
	f.Float64Var(&td, "td", config.DefaultTd, "derivative time (s), 0 disables")
	f.Float64Var(&pMax, "p-max", config.DefaultPMax, "heater power (W)")
	f.Float64Var(&volume, "volume", config.DefaultVolumeL, "tank volume (L)")
	f.Float64Var(&flow, "flow", config.DefaultFlowLPM, "draw flow (L/min)")
	f.Float64Var(&showerStart, "shower-start", config.DefaultShowerFrom, "draw window start (s)")
	f.Float64Var(&showerEnd, "shower-end", config.DefaultShowerTo, "draw window end (s)")
	f.StringVar(&profile, "profile", config.DefaultProfile, "draw profile (boxcar, none, constant, schedule)")
	f.StringVar(&antiWindup, "anti-windup", config.DefaultAntiWindup, "anti-windup policy (clamping, back_calculation, dynamic_bound)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "time step (s)")
	f.Float64Var(&totalTime, "time", config.DefaultTotalTime, "simulated time (s)")
}

func addPlotSizeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
}

// loadConfig layers preset, config file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
		logger.Debug("loaded environment from %s", envFile)
	}

	base := config.DefaultConfig()
	if presetName != "" {
		base = config.GetPreset(presetName)
		if base == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", presetName, config.ListPresets())
		}
		logger.Info("using preset %s", presetName)
	}

	cfg, err := config.LoadFrom(base, configFile)
	if err != nil {
		return nil, err
	}

	applyOverrides(cmd, cfg)
	return cfg, nil
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("t-set") {
		cfg.Controller.TSet = tSet
	}
	if changed("kp") {
		cfg.Controller.Kp = kp
	}
	if changed("ti") {
		cfg.Controller.Ti = ti
	}
	if changed("td") {
		cfg.Controller.Td = td
	}
	if changed("p-max") {
		cfg.Controller.PMax = pMax
	}
	if changed("anti-windup") {
		cfg.Controller.AntiWindup = antiWindup
	}
	if changed("volume") {
		cfg.Tank.VolumeL = volume
	}
	if changed("flow") {
		cfg.Draw.FlowLPerMin = flow
	}
	if changed("shower-start") {
		cfg.Draw.StartS = showerStart
	}
	if changed("shower-end") {
		cfg.Draw.EndS = showerEnd
	}
	if changed("profile") {
		cfg.Draw.Profile = profile
	}
	if changed("dt") {
		cfg.Run.Dt = dt
	}
	if changed("time") {
		cfg.Run.TotalTime = totalTime
	}
}
