package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var snap *cloth.Snapshot
	if snapshotIn != "" {
		s, err := storage.LoadSnapshot(snapshotIn)
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		cfg.Cloth.Width, cfg.Cloth.Height = s.Width, s.Height
		cfg.Cloth.Spacing, cfg.Cloth.YOffset = s.Spacing, s.YOffset
		snap = &s
	}

	s, simCfg, err := automation.NewSimulator(cfg)
	if err != nil {
		return err
	}
	if snap != nil {
		if err := s.Cloth().Restore(*snap); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := runName(args)
	fmt.Printf("running %s (%dx%d, %d ticks)...\n", name, cfg.Cloth.Width, cfg.Cloth.Height, cfg.Run.Ticks)
	start := time.Now()
	result, err := s.Run(ctx, simCfg)
	if result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}
	return storeResult(name, cfg, result, time.Since(start))
}

func storeResult(name string, cfg *config.Config, result *sim.Result, elapsed time.Duration) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}
	if snapshotOut != "" {
		if err := storage.SaveSnapshot(snapshotOut, result.Final); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, result.Metrics)
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tDT\tTICKS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%.4fs\t%d/%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Dt,
			run.StepsTaken, run.Ticks,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	names := storage.SeriesNames(series)
	if plotMetric != "" {
		if _, ok := series[plotMetric]; !ok {
			return fmt.Errorf("run %s has no metric %q (have %v)", runID, plotMetric, names)
		}
		names = []string{plotMetric}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("cloth: %dx%d\n\n", meta.Width, meta.Height)

	for _, name := range names {
		data := series[name]
		if len(data) == 0 {
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	data, ok := series[analyzeMetric]
	if !ok || len(data) == 0 {
		return fmt.Errorf("run %s has no data for %q", runID, analyzeMetric)
	}

	fmt.Printf("analysis: %s (%s)\n\n", meta.ID, analyzeMetric)

	sum := analysis.Summarize(data, 1e-3)
	fmt.Printf("min: %.6f  max: %.6f  mean: %.6f  final: %.6f\n", sum.Min, sum.Max, sum.Mean, sum.Final)
	if sum.SettleIndex >= 0 && sum.SettleIndex < len(data)-1 {
		fmt.Printf("settled after %.2fs\n", float64(sum.SettleIndex+1)*meta.Dt)
	} else {
		fmt.Println("did not settle")
	}

	freq, err := analysis.DominantFrequency(data, meta.Dt)
	if errors.Is(err, analysis.ErrTooShort) {
		fmt.Println("series too short for a spectrum")
		return nil
	}
	if err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 8 {
		ps = ps[:len(ps)/4]
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+analyzeMetric+")"),
	))
	fmt.Println()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

// outputWriter opens output, or stdout when it is empty.
func outputWriter(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	w, closeFn, err := outputWriter(output)
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportCSV(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	w, closeFn, err := outputWriter(output)
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportJSON(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snap, err := st.LoadSnapshot(runID)
	if err != nil {
		return err
	}

	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	c, err := cloth.FromSnapshot(params, snap)
	if err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	opts.GroundHeight = cfg.Forces.GroundHeight
	if svgAll {
		opts.Toggles = cloth.AllEnabled()
	}

	svg := export.ClothToSVG(c, opts)
	if svgBraille {
		cv := viz.Draw(c, viz.Scene{GroundHeight: opts.GroundHeight, Toggles: opts.Toggles, Cursor: -1}, 80, 40)
		svg = export.CanvasToSVG(cv, 4)
	}

	path := output
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func benchSolver(cmd *cobra.Command, args []string) error {
	sizes := []int{10, 20, 40}

	fmt.Printf("benchmarking %d ticks\n\n", benchTicks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tSOLVER\tTICKS\tTIME\tTICKS/SEC")

	for _, n := range sizes {
		for _, par := range []bool{false, true} {
			cfg := config.DefaultConfig()
			cfg.Cloth.Width, cfg.Cloth.Height = n, n
			cfg.Solver.Parallel = par
			cfg.Run.Ticks = benchTicks

			s, simCfg, err := automation.NewSimulator(cfg)
			if err != nil {
				return err
			}

			steps := 0
			start := time.Now()
			err = s.RunWithCallback(context.Background(), simCfg, func(*cloth.Cloth) bool {
				steps++
				return true
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			solver := "sequential"
			if par {
				solver = "parallel"
			}
			fmt.Fprintf(w, "%dx%d\t%s\t%d\t%v\t%.0f\n",
				n, n, solver, steps, elapsed, float64(steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var base *config.Config
	if configFile != "" {
		if base, err = config.Load(configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %s\n", sc.Name, sc.Description)
	start := time.Now()
	result, cfg, err := automation.RunScenario(ctx, sc, base)
	if result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}
	return storeResult(sc.Name, cfg, result, time.Since(start))
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sw := &automation.ParameterSweep{
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Workers:  sweepWorkers,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %d values...\n\n", sw.Param, len(sw.Values()))
	results, err := automation.RunSweep(ctx, cfg, sw)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTICKS\tSTABLE\t%s\n", sw.Param, sweepMetric)
	for _, r := range results {
		fmt.Fprintf(w, "%.6g\t%d\t%v\t%.6f\n", r.ParamValue, r.StepsTaken, r.Stable, r.Metrics[sweepMetric])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := automation.Best(results, sweepMetric); ok {
		fmt.Printf("\nbest %s: %.6g (%s %.6f)\n", sw.Param, best.ParamValue, sweepMetric, best.Metrics[sweepMetric])
	} else {
		fmt.Println("\nno stable run")
	}
	return nil
}

var planes = map[string][2]int{"xy": {0, 1}, "xz": {0, 2}, "zy": {2, 1}}

// traceRun runs cfg and records particle idx projected onto plane. A
// negative idx picks the centre of the bottom row.
func traceRun(ctx context.Context, cfg *config.Config, idx int, plane string) (*analysis.Trace, *sim.Result, error) {
	axes, ok := planes[plane]
	if !ok {
		return nil, nil, fmt.Errorf("unknown plane: %s (available: xy, xz, zy)", plane)
	}
	s, simCfg, err := automation.NewSimulator(cfg)
	if err != nil {
		return nil, nil, err
	}
	g := s.Cloth().Grid()
	if idx < 0 {
		idx = g.Index(g.Width/2, g.Height-1)
	}
	if idx >= g.Len() {
		return nil, nil, fmt.Errorf("particle %d of %d: %w", idx, g.Len(), cloth.ErrIndexOutOfRange)
	}

	tr := analysis.NewTrace(idx, axes[0], axes[1])
	s.AddObserver(tr)
	s.AddObserver(sim.ObserverFunc(func(c *cloth.Cloth) {
		if c.Tick()%100 == 0 {
			p, _ := c.Particle(idx)
			log.Printf("trace: tick %d particle %d at %v", c.Tick(), idx, p.Position)
		}
	}))

	result, err := s.Run(ctx, simCfg)
	if result == nil {
		return nil, nil, err
	}
	return tr, result, err
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tr, result, err := traceRun(ctx, cfg, traceIndex, tracePlane)
	if tr == nil {
		return err
	}
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}

	i, j := cloth.Grid{Width: cfg.Cloth.Width, Height: cfg.Cloth.Height}.Coords(tr.Index)
	fmt.Printf("particle %d (column %d, row %d), %s plane, %d ticks\n\n",
		tr.Index, i, j, tracePlane, result.StepsTaken)
	fmt.Print(analysis.TraceToASCII(tr, 60, 20))
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if traceSVG != "" {
		if err := os.WriteFile(traceSVG, []byte(export.TraceToSVG(tr, 600, 400, "#2a7ae2")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", traceSVG)
	}
	return nil
}
