package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/metrics"
	"github.com/san-kum/particlesim/internal/scenario"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/san-kum/particlesim/internal/storage"
	"github.com/san-kum/particlesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	duration   float64
	verbose    bool
	noSave     bool
	workers    int
	speed      float64
	fps        int
	particleIx int
	svgSize    int
	output     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "particlesim",
		Short:        "event-driven elastic collision simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(config.ListPresets(), loadPreset)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario files...]",
		Short: "run to termination and print the final state",
		RunE:  runSimulation,
	}
	sourceFlags(runCmd)
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace every applied event to stderr")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")
	runCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel runs when several files are given")

	liveCmd := &cobra.Command{
		Use:   "live [scenario file]",
		Short: "play a simulation in the terminal",
		Long:  "Play one scenario in the terminal: a file argument, --preset or --config.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sourceFlags(liveCmd)
	liveCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "simulated time per second")
	liveCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run's summary and final state",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot cumulative collisions over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "speed distribution and collision periodicity of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final state, or one particle's path, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&particleIx, "particle", -1, "draw this particle's trajectory instead of the final state")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image edge length in pixels")
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, analyzeCmd, exportSVGCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&duration, "time", 0, "override the scenario duration")
}

// source is one resolved scenario together with its playback settings.
type source struct {
	name   string
	origin string
	sc     *scenario.Scenario
	speed  float64
	fps    int
}

// resolveSources picks scenarios from --preset, --config or file arguments, in
// that order. Explicit flags override values from the config.
func resolveSources(cmd *cobra.Command, args []string) ([]source, error) {
	var cfg *config.Config
	origin := ""
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		origin = "preset:" + preset
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		origin = configFile
		if cfg.DataDir != "" && !cmd.Flags().Changed("data") {
			dataDir = cfg.DataDir
		}
	}

	srcs := make([]source, 0, len(args)+1)
	if cfg != nil {
		sc, err := cfg.Resolve()
		if err != nil {
			return nil, err
		}
		name := cfg.Name
		if name == "" {
			name = baseName(origin)
		}
		srcs = append(srcs, source{name: name, origin: origin, sc: sc, speed: cfg.Speed, fps: cfg.FPS})
	}

	for _, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, source{name: baseName(path), origin: path, sc: sc})
	}

	if len(srcs) == 0 {
		return nil, fmt.Errorf("no scenario: give a file, --preset or --config")
	}

	for i := range srcs {
		if cmd.Flags().Changed("time") {
			srcs[i].sc.Duration = duration
		}
		if f := cmd.Flags().Lookup("speed"); f != nil && (f.Changed || srcs[i].speed == 0) {
			srcs[i].speed = speed
		}
		if f := cmd.Flags().Lookup("fps"); f != nil && (f.Changed || srcs[i].fps == 0) {
			srcs[i].fps = fps
		}
	}
	return srcs, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	srcs, err := resolveSources(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(srcs) > 1 {
		return runBatch(ctx, srcs)
	}
	src := srcs[0]

	e, err := src.sc.Engine()
	if err != nil {
		return fmt.Errorf("%s: %w", src.origin, err)
	}

	set := metrics.Default(float64(src.sc.Width), e.KineticEnergy(), e.NumParticles())
	rec := storage.NewRecorder()
	e.AddObserver(set)
	e.AddObserver(rec)

	if verbose {
		logger := log.New(os.Stderr, "particlesim: ", log.Lmicroseconds)
		logger.Printf("%s: %d particles, width %d, duration %g, %d predictions queued",
			src.name, e.NumParticles(), src.sc.Width, src.sc.Duration, e.Pending())
		e.AddObserver(sim.ObserverFunc(func(f sim.Frame) {
			logger.Printf("%s (+%g)", f.Event, f.Delta)
		}))
	}

	start := time.Now()
	if err := e.Run(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)
	set.Finish(e.Clock())

	final, err := e.FinalState()
	if err != nil {
		return err
	}
	if err := scenario.Write(os.Stdout, src.sc.Width, src.sc.Duration, final); err != nil {
		return err
	}

	stats := e.Stats()
	fmt.Fprintf(os.Stderr, "completed in %v: %d collisions (%d pair, %d wall), %d stale\n",
		elapsed, stats.Applied, stats.PairCollisions, stats.WallCollisions, stats.Stale)
	values := set.Values()
	for _, name := range set.Names() {
		fmt.Fprintf(os.Stderr, "  %s: %.6g\n", name, values[name])
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Name:     src.name,
		Source:   src.origin,
		Width:    src.sc.Width,
		Duration: src.sc.Duration,
		Elapsed:  elapsed,
		Stats:    stats,
		Metrics:  values,
	}, final, rec.Events)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "run id: %s\n", runID)
	return nil
}

// runBatch runs several scenarios in parallel. Reports are printed in argument
// order, each under a header naming its source.
func runBatch(ctx context.Context, srcs []source) error {
	jobs := make([]sim.Job, len(srcs))
	for i, src := range srcs {
		ps, err := src.sc.Build()
		if err != nil {
			return fmt.Errorf("%s: %w", src.origin, err)
		}
		jobs[i] = sim.Job{Name: src.name, Config: src.sc.Config(), Particles: ps}
	}

	start := time.Now()
	outcomes, err := sim.RunBatch(ctx, jobs, workers)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	for i, out := range outcomes {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("==> %s <==\n", srcs[i].origin)
		if err := scenario.Write(os.Stdout, srcs[i].sc.Width, srcs[i].sc.Duration, out.Final); err != nil {
			return err
		}
		if st == nil {
			continue
		}
		runID, err := st.Save(storage.RunMetadata{
			Name:     out.Name,
			Source:   srcs[i].origin,
			Width:    srcs[i].sc.Width,
			Duration: srcs[i].sc.Duration,
			Stats:    out.Stats,
		}, out.Final, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s: run id %s\n", out.Name, runID)
	}
	fmt.Fprintf(os.Stderr, "completed %d runs in %v\n", len(outcomes), elapsed)
	return nil
}

var errOneLiveSource = errors.New("live plays one scenario: give a file or --preset/--config, not both")

func runLive(cmd *cobra.Command, args []string) error {
	srcs, err := resolveSources(cmd, args)
	if err != nil {
		return err
	}
	if len(srcs) > 1 {
		return errOneLiveSource
	}
	src := srcs[0]

	e, err := src.sc.Engine()
	if err != nil {
		return fmt.Errorf("%s: %w", src.origin, err)
	}
	return viz.Run(e, viz.Options{Name: src.name, Speed: src.speed, FPS: src.fps})
}

func loadPreset(name string) (*sim.Engine, viz.Options, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, viz.Options{}, fmt.Errorf("unknown preset: %s", name)
	}
	sc, err := cfg.Resolve()
	if err != nil {
		return nil, viz.Options{}, err
	}
	e, err := sc.Engine()
	if err != nil {
		return nil, viz.Options{}, err
	}
	return e, viz.Options{Name: name, Speed: cfg.Speed, FPS: cfg.FPS}, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tWIDTH\tDURATION")
	for _, name := range names {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\n", name, len(cfg.Particles), cfg.Width, cfg.Duration)
	}
	return w.Flush()
}
