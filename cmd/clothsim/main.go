package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	dataDir    string
	debug      bool
	configFile string
	preset     string

	dt         float64
	ticks      int
	seed       int64
	width      int
	height     int
	spacing    float64
	iterations int
	substeps   int
	parallel   bool
	correction string
	windSpeed  float64
	turbulence float64

	snapshotIn    string
	snapshotOut   string
	output        string
	plotMetric    string
	analyzeMetric string
	sweepMetric   string
	benchTicks    int
	svgAll        bool
	svgBraille    bool

	traceIndex int
	tracePlane string
	traceSVG   string

	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	sweepWorkers int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clothsim",
		Short: "mass-spring cloth simulation lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var base *config.Config
			if configFile != "" {
				cfg, err := config.Load(configFile)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				base = cfg
			}
			return viz.RunInteractive(base)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write diagnostics to <data>/logs/clothsim.log")
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&snapshotIn, "from-snapshot", "", "start from a saved snapshot")
	runCmd.Flags().StringVar(&snapshotOut, "snapshot", "", "also write the final snapshot here")

	liveCmd := &cobra.Command{
		Use:   "live [name]",
		Short: "run the cloth in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "", "plot only this metric")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary and frequency analysis of a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "lowest_point", "metric to analyse")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the final cloth of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().BoolVar(&svgAll, "all", false, "draw shear and bend springs too")
	exportSVGCmd.Flags().BoolVar(&svgBraille, "braille", false, "draw the terminal braille frame instead of the mesh")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "follow one particle through a run and plot its path",
		RunE:  runTrace,
	}
	addConfigFlags(traceCmd)
	traceCmd.Flags().IntVar(&traceIndex, "particle", -1, "particle index (default: bottom row centre)")
	traceCmd.Flags().StringVar(&tracePlane, "plane", "xy", "projection plane (xy|xz|zy)")
	traceCmd.Flags().StringVar(&traceSVG, "svg", "", "also write the path as SVG here")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the solver across grid sizes",
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 200, "ticks per case")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&configFile, "config", "", "base config when the scenario names no preset")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep a parameter and compare metrics",
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "structural_stiffness", fmt.Sprintf("parameter %v", automation.SweepParamNames()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.01, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "strain", "metric to minimise")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd,
		exportSVGCmd, presetsCmd, benchCmd, scenarioCmd, sweepCmd, traceCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging routes the log package to a file under the data directory
// when debugging and discards it otherwise.
func setupLogging(enabled bool) error {
	if !enabled {
		log.SetOutput(io.Discard)
		return nil
	}
	dir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "clothsim.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	return nil
}

func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", d.Run.Dt, "tick length")
	cmd.Flags().IntVar(&ticks, "ticks", d.Run.Ticks, "ticks to run")
	cmd.Flags().Int64Var(&seed, "seed", d.Run.Seed, "turbulence seed")
	cmd.Flags().IntVar(&width, "width", d.Cloth.Width, "particles per row")
	cmd.Flags().IntVar(&height, "height", d.Cloth.Height, "particles per column")
	cmd.Flags().Float64Var(&spacing, "spacing", d.Cloth.Spacing, "rest spacing")
	cmd.Flags().IntVar(&iterations, "iterations", d.Solver.Iterations, "solver iterations per sub-step")
	cmd.Flags().IntVar(&substeps, "substeps", d.Solver.Substeps, "sub-steps per tick")
	cmd.Flags().BoolVar(&parallel, "parallel", d.Solver.Parallel, "batched parallel solver")
	cmd.Flags().StringVar(&correction, "correction", d.Solver.Correction, "correction rule (pull|uniform)")
	cmd.Flags().Float64Var(&windSpeed, "wind", d.Forces.Wind.Strength, "wind strength")
	cmd.Flags().Float64Var(&turbulence, "turbulence", d.Forces.Wind.Turbulence, "wind turbulence")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Cloth.Width = width
	}
	if flags.Changed("height") {
		cfg.Cloth.Height = height
	}
	if flags.Changed("spacing") {
		cfg.Cloth.Spacing = spacing
	}
	if flags.Changed("iterations") {
		cfg.Solver.Iterations = iterations
	}
	if flags.Changed("substeps") {
		cfg.Solver.Substeps = substeps
	}
	if flags.Changed("parallel") {
		cfg.Solver.Parallel = parallel
	}
	if flags.Changed("correction") {
		cfg.Solver.Correction = correction
	}
	if flags.Changed("wind") {
		cfg.Forces.Wind.Strength = windSpeed
	}
	if flags.Changed("turbulence") {
		cfg.Forces.Wind.Turbulence = turbulence
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runName is the optional positional name, falling back to the preset.
func runName(args []string) string {
	switch {
	case len(args) > 0:
		return args[0]
	case preset != "":
		return preset
	}
	return "cloth"
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(runName(args), cfg)
}
