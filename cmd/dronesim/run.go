package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/integrators"
	"github.com/san-kum/dronesim/internal/optim"
	"github.com/san-kum/dronesim/internal/telemetry"
	"github.com/san-kum/dronesim/internal/testbed"
	"github.com/san-kum/dronesim/internal/tui"
	"github.com/san-kum/dronesim/internal/tyre"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	bad     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, logCloser, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := signalContext()
	defer cancel()

	inst, err := telemetry.NewInstruments(telemetry.Meter(), cfg.Drone.ID)
	if err != nil {
		return err
	}
	defer inst.Close()
	opts := []testbed.Option{testbed.WithLogger(log), testbed.WithObserver(inst)}

	if influxURL != "" {
		sink, err := telemetry.NewInfluxSink(ctx, telemetry.InfluxConfig{
			URL:        influxURL,
			Token:      influxToken,
			Org:        influxOrg,
			Bucket:     influxBucket,
			BackupPath: influxBackup,
		}, cfg.Drone.ID, time.Now(), log)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				log.Error().Err(err).Msg("closing influx sink")
			}
		}()
		opts = append(opts, testbed.WithObserver(sink))
	}

	d, err := testbed.FromConfig(cfg, opts...)
	if err != nil {
		return err
	}

	log.Info().Str("config", cfg.Name).Str("drone", cfg.Drone.ID).Float64("duration", cfg.Duration).Msg("running simulation")
	start := time.Now()
	result, runErr := d.Run(ctx, testbed.RunConfigOf(cfg))
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	printSummary(cfg, result, elapsed, inst.Touchdowns(), runErr)

	if save {
		st, closeIdx, err := openStore(log)
		if err != nil {
			return err
		}
		defer closeIdx()
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result, runErr)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return runErr
}

func printSummary(cfg *config.Config, result *testbed.Result, elapsed time.Duration, touchdowns int64, runErr error) {
	fmt.Println(heading.Render(fmt.Sprintf("%s / %s", cfg.Name, result.DroneID)))
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("touchdowns: %d\n", touchdowns)

	final := result.Final()
	fmt.Printf("final t=%.3fs  pos=(%.3f, %.3f, %.3f)  speed=%.3f m/s\n",
		final.Time, final.State.Position.X, final.State.Position.Y, final.State.Position.Z, final.State.Velocity.Norm())
	for i, r := range tyre.Roles {
		fmt.Printf("  %-10s depth %.5f m\n", r, final.Depths[i])
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %.6f\n", name, result.Metrics[name])
	}
	if runErr != nil {
		fmt.Println(bad.Render("run failed: " + runErr.Error()))
	}
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := testbed.FromConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d steps)\n", cfg.Name, cfg.Steps())
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", cfg.Name, cfg.Dt, cfg.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL_Y\tFINAL_SPEED\tENERGY_DRIFT\tTIME_MS")

	for _, name := range args {
		if _, err := integrators.ByName(name); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		c := cfg.Clone()
		c.Integrator = name
		d, err := testbed.FromConfig(c)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		start := time.Now()
		res, err := d.Run(ctx, testbed.RunConfigOf(c))
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		final := res.Final()
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.3e\t%.2f\n", name, final.State.Position.Y, final.State.Velocity.Norm(),
			res.Metrics["energy_drift"], float64(elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func tuneTaxi(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("tuning taxi autopilot on %s: %d kp x %d ki, target %.2f m/s\n\n",
		cfg.Name, len(tuneKps), len(tuneKis), cfg.AutopilotParams.Target)
	best, bestVal, trials, err := optim.TuneTaxi(ctx, cfg, tuneKps, tuneKis)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KP\tKI\tSPEED_ERROR\tNOTE")
	for _, tr := range trials {
		note := ""
		if tr.Err != nil {
			note = tr.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%g\t%.4f\t%s\n", tr.Params["kp"], tr.Params["ki"], tr.Value, note)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(heading.Render(fmt.Sprintf("\nbest: kp=%g ki=%g speed_error=%.4f", best["kp"], best["ki"], bestVal)))
	return nil
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The dashboard owns the terminal; only errors are logged.
	log, logCloser, err := newLogger("error")
	if err != nil {
		return err
	}
	defer logCloser.Close()

	d, err := testbed.FromConfig(cfg, testbed.WithLogger(log))
	if err != nil {
		return err
	}
	return tui.Run(d, cfg.Dt, cfg.Duration)
}
