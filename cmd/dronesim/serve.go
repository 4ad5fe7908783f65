package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/telemetry"
	"github.com/san-kum/dronesim/internal/testbed"
)

// serveFleet flies every preset concurrently and streams their samples.
// The server stays up after the runs finish until interrupted.
func serveFleet(cmd *cobra.Command, args []string) error {
	log, logCloser, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var (
		drivers []*testbed.Driver
		hubs    []*telemetry.Hub
		maxDur  float64
		dtMin   float64
	)
	for _, name := range presets {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		cfg.Drone.ID = name
		if cmd.Flags().Changed("time") {
			cfg.Duration = duration
		}
		hub := telemetry.NewHub(name, log)
		d, err := testbed.FromConfig(cfg, testbed.WithLogger(log), testbed.WithObserver(hub))
		if err != nil {
			return err
		}
		drivers = append(drivers, d)
		hubs = append(hubs, hub)
		if cfg.Duration > maxDur {
			maxDur = cfg.Duration
		}
		if dtMin == 0 || cfg.Dt < dtMin {
			dtMin = cfg.Dt
		}
	}

	fleet, err := testbed.NewFleet(drivers...)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: addr, Handler: telemetry.NewRouter(hubs...)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()
	log.Info().Str("addr", addr).Strs("drones", presets).Msg("streaming on /drones/{id}/ws")

	// Give watchers a moment to connect before the first tick.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
	}

	results, runErr := fleet.Run(ctx, testbed.RunConfig{Dt: dtMin, Duration: maxDur})
	for _, h := range hubs {
		h.Close()
	}
	for i, res := range results {
		if res == nil {
			continue
		}
		log.Info().Str("drone", res.DroneID).Int("steps", res.StepsTaken).
			Int("dropped_frames", hubs[i].Dropped()).Msg("run finished")
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("fleet run failed")
	}

	<-ctx.Done()
	shutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdown)
}
