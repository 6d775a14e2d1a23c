package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/analysis"
	"github.com/san-kum/particlesim/internal/export"
	"github.com/san-kum/particlesim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

const (
	plotWidth    = 80
	speedBins    = 16
	spectrumBins = 512
)

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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPARTICLES\tDURATION\tCOLLISIONS\tSTALE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Duration,
			run.Stats.Applied,
			run.Stats.Stale,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	final, err := st.LoadFinal(args[0])
	if err != nil {
		return err
	}

	row := func(k string, v any) string {
		return labelStyle.Render(k) + valueStyle.Render(fmt.Sprint(v)) + "\n"
	}

	var summary string
	summary += row("source", meta.Source)
	summary += row("recorded", meta.Timestamp.Format("2006-01-02 15:04:05"))
	summary += row("width", meta.Width)
	summary += row("duration", meta.Duration)
	summary += row("particles", meta.Particles)
	summary += row("elapsed", meta.Elapsed)
	summary += row("pair collisions", meta.Stats.PairCollisions)
	summary += row("wall collisions", meta.Stats.WallCollisions)
	summary += row("stale events", meta.Stats.Stale)
	summary += row("peak queue", meta.Stats.PeakQueue)

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		summary += row(name, fmt.Sprintf("%.6g", meta.Metrics[name]))
	}

	fmt.Println(titleStyle.Render(meta.ID))
	fmt.Println(boxStyle.Render(summary))
	fmt.Println()
	return final.Write(os.Stdout)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	events, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no collisions recorded for %s", meta.ID)
	}

	data := storage.CumulativeCollisions(events, meta.Duration, plotWidth)
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("collisions: %d over t=[0, %g]\n\n", len(events), meta.Duration)
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("cumulative collisions vs time"),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	final, err := st.LoadFinal(args[0])
	if err != nil {
		return err
	}
	events, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mean speed:    %.6g\n", analysis.MeanSpeed(final.Particles))
	fmt.Printf("equipartition: %.6g (x/y kinetic energy)\n", analysis.Equipartition(final.Particles))

	h := analysis.SpeedHistogram(final.Particles, speedBins)
	fmt.Println()
	fmt.Println(asciigraph.Plot(h.Counts,
		asciigraph.Height(8),
		asciigraph.Caption(fmt.Sprintf("final speeds, bin width %.3g", h.BinWidth())),
	))

	times := make([]float64, len(events))
	for i, ev := range events {
		times[i] = ev.Time
	}
	period, ps, err := analysis.Periodicity(times, meta.Duration, spectrumBins)
	if err != nil {
		fmt.Printf("\nspectrum: %v\n", err)
		return nil
	}
	fmt.Printf("\ndominant collision period: %.6g\n\n", period)
	fmt.Println(asciigraph.Plot(ps[1:],
		asciigraph.Height(8),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("collision spectrum (cycles per run)"),
	))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var svg string
	if particleIx < 0 {
		final, err := st.LoadFinal(args[0])
		if err != nil {
			return err
		}
		svg = export.FinalStateSVG(final.Width, final.Particles, svgSize)
	} else {
		if particleIx >= meta.Particles {
			return fmt.Errorf("particle %d out of range (run has %d)", particleIx, meta.Particles)
		}
		events, err := st.LoadEvents(args[0])
		if err != nil {
			return err
		}
		svg = export.TrajectorySVG(storage.Trajectory(events, particleIx), meta.Width, svgSize, "#00ff88")
		if svg == "" {
			return fmt.Errorf("particle %d has fewer than two recorded collisions", particleIx)
		}
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err = io.WriteString(w, svg+"\n")
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}
