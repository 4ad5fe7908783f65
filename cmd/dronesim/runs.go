package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/dronesim/internal/analysis"
	"github.com/san-kum/dronesim/internal/export"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if indexDSN != "" {
		idx, err := storage.OpenIndex(indexDSN, zerolog.Nop())
		if err != nil {
			return err
		}
		defer idx.Close()
		recs, err := idx.Query(storage.Filter{Name: listName, FailedOnly: listFailed, Limit: listLimit})
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("no runs found")
			return nil
		}
		fmt.Fprintln(w, "ID\tDRONE\tTIME\tDURATION\tDT\tINTEG\tPILOT\tSTATUS")
		for _, r := range recs {
			status := "ok"
			if r.Failed {
				status = "failed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%s\n",
				r.ID, r.DroneID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Duration, r.Dt, r.Integrator, r.Autopilot, status)
		}
		return w.Flush()
	}

	if listName != "" || listFailed {
		return fmt.Errorf("--name and --failed need --index")
	}
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if listLimit > 0 && len(runs) > listLimit {
		runs = runs[:listLimit]
	}

	fmt.Fprintln(w, "ID\tDRONE\tTIME\tDURATION\tDT\tINTEG\tPILOT\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%s\n",
			run.ID, run.DroneID, run.Timestamp.Format("2006-01-02 15:04:05"), run.Duration, run.Dt, run.Integrator, run.Autopilot, status)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(heading.Render(meta.ID))
	fmt.Printf("config:     %s\n", meta.Name)
	fmt.Printf("drone:      %s\n", meta.DroneID)
	fmt.Printf("time:       %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("integrator: %s\n", meta.Integrator)
	fmt.Printf("autopilot:  %s\n", meta.Autopilot)
	fmt.Printf("dt:         %g\n", meta.Dt)
	fmt.Printf("steps:      %d / %d\n", meta.Steps, int(meta.Duration/meta.Dt+0.5))
	if meta.Error != "" {
		fmt.Println(bad.Render("error:      " + meta.Error))
	}

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %-16s %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, closeIdx, err := openStore(zerolog.Nop())
	if err != nil {
		return err
	}
	defer closeIdx()
	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func loadSamples(runID string) (*storage.RunMetadata, []metrics.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	data, err := analysis.Series(samples, channel)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(samples))
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(channel+" vs time"),
	))

	if svgPath == "" {
		return nil
	}
	f, err := os.Create(svgPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.ChannelSVG(f, samples, channel, export.DefaultChart()); err != nil {
		return err
	}
	fmt.Printf("\nwrote %s\n", svgPath)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	p, err := analysis.NewPhasePortrait(samples, xAxis, yAxis)
	if err != nil {
		return err
	}

	minX, maxX, minY, maxY := p.Bounds()
	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("%s in [%.4f, %.4f], %s in [%.4f, %.4f]\n", xAxis, minX, maxX, yAxis, minY, maxY)
	window := len(p.Points) / 10
	fmt.Printf("settled: %v\n", p.Settled(window, 1e-3))

	if svgPath == "" {
		return nil
	}
	f, err := os.Create(svgPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.PhaseSVG(f, p, export.DefaultChart()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	data, err := analysis.Series(samples, channel)
	if err != nil {
		return err
	}
	sp, err := analysis.PowerSpectrum(data, meta.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("channel: %s\n\n", channel)

	n := len(sp.Amplitudes)
	if n > 80 {
		n = 80
	}
	fmt.Println(asciigraph.Plot(sp.Amplitudes[1:n],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("amplitude spectrum"),
	))

	freq, amp := sp.Dominant()
	fmt.Printf("\ndominant frequency: %.3f hz (amplitude %.3e)\n", freq, amp)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, cfg, result)
}

func trackRun(cmd *cobra.Command, args []string) error {
	_, samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	ls, err := storage.Track(samples, storage.Origin{Longitude: originLon, Latitude: originLat, Altitude: originAlt})
	if err != nil {
		return err
	}
	if wkt {
		fmt.Println(ls.AsText())
		return nil
	}
	out, err := ls.MarshalJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
