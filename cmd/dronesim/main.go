package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/logging"
	"github.com/san-kum/dronesim/internal/storage"
)

var (
	dataDir    string
	indexDSN   string
	logLevel   string
	graylog    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	save       bool

	influxURL    string
	influxToken  string
	influxOrg    string
	influxBucket string
	influxBackup string

	channel string
	svgPath string
	xAxis   string
	yAxis   string

	originLon float64
	originLat float64
	originAlt float64
	wkt       bool

	listName   string
	listFailed bool
	listLimit  int

	tuneKps []float64
	tuneKis []float64

	addr    string
	presets []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dronesim",
		Short:         "drone ground-contact simulation testbed",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dronesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&indexDSN, "index", "", "run index: sqlite file or postgres dsn")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&graylog, "graylog", "", "also send logs to this GELF udp address")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", true, "store the run under the data directory")
	runCmd.Flags().StringVar(&influxURL, "influx-url", "", "publish samples to influxdb at this url")
	runCmd.Flags().StringVar(&influxToken, "influx-token", "", "influxdb token")
	runCmd.Flags().StringVar(&influxOrg, "influx-org", "dronesim", "influxdb organisation")
	runCmd.Flags().StringVar(&influxBucket, "influx-bucket", "runs", "influxdb bucket")
	runCmd.Flags().StringVar(&influxBackup, "influx-backup", "", "gzip line protocol file used when influxdb is down")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check a configuration without running it",
		Args:  cobra.NoArgs,
		RunE:  validateConfig,
	}
	addConfigFlags(validateCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-10s dt=%-6g duration=%-4gs autopilot=%s\n", p, cfg.Dt, cfg.Duration, cfg.Autopilot)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&listName, "name", "", "only runs of this config name (needs --index)")
	listCmd.Flags().BoolVar(&listFailed, "failed", false, "only failed runs (needs --index)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "at most this many runs")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one channel of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&channel, "channel", "y", "channel to plot")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the chart as svg")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two channels",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x", "y", "channel for the x axis")
	phaseCmd.Flags().StringVar(&yAxis, "y", "vy", "channel for the y axis")
	phaseCmd.Flags().StringVar(&svgPath, "svg", "", "write the portrait as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one channel",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&channel, "channel", "depth_front", "channel to analyse")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	trackCmd := &cobra.Command{
		Use:   "track [run_id]",
		Short: "export the ground track as geojson",
		Args:  cobra.ExactArgs(1),
		RunE:  trackRun,
	}
	trackCmd.Flags().Float64Var(&originLon, "lon", 0, "longitude of the world origin")
	trackCmd.Flags().Float64Var(&originLat, "lat", 0, "latitude of the world origin")
	trackCmd.Flags().Float64Var(&originAlt, "alt", 0, "altitude of the ground plane")
	trackCmd.Flags().BoolVar(&wkt, "wkt", false, "write well-known text instead of geojson")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator] [integrator] ...",
		Short: "compare integrators on the same configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the taxi autopilot gains",
		Args:  cobra.NoArgs,
		RunE:  tuneTaxi,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&tuneKps, "kp", []float64{100, 200, 400, 800}, "kp values")
	tuneCmd.Flags().Float64SliceVar(&tuneKis, "ki", []float64{0, 10, 20, 40}, "ki values")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "run with a live terminal dashboard",
		Args:  cobra.NoArgs,
		RunE:  watchSimulation,
	}
	addConfigFlags(watchCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run several presets and stream them over websocket",
		Args:  cobra.NoArgs,
		RunE:  serveFleet,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringSliceVar(&presets, "presets", []string{"rest", "taxi", "brake"}, "presets to fly")
	serveCmd.Flags().Float64Var(&duration, "time", 0, "duration override")

	rootCmd.AddCommand(runCmd, validateCmd, presetsCmd, listCmd, showCmd, deleteCmd, plotCmd, phaseCmd,
		analyzeCmd, exportCmd, trackCmd, compareCmd, tuneCmd, watchCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator override")
}

// loadConfig resolves the configuration: preset or file, then DRONESIM_*
// environment overrides, then command line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "" && preset != "":
		return nil, fmt.Errorf("--config and --preset are exclusive")
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if err := cfg.ApplyEnv(config.NewEnv()); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, cfg.Validate()
}

// newLogger writes to stderr and, with --graylog, to a GELF input. The
// returned closer releases the GELF socket.
func newLogger(level string) (zerolog.Logger, io.Closer, error) {
	if graylog == "" {
		log, err := logging.NewConsole(level, os.Stderr, true)
		return log, io.NopCloser(nil), err
	}
	gw, err := logging.NewGraylog(graylog)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("graylog %s: %w", graylog, err)
	}
	log, err := logging.New(level, logging.Tee(zerolog.ConsoleWriter{Out: os.Stderr}, gw))
	if err != nil {
		gw.Close()
		return zerolog.Nop(), nil, err
	}
	return log, gw, nil
}

// openStore opens the run directory and, with --index, the run index.
func openStore(log zerolog.Logger) (*storage.Store, func(), error) {
	st := storage.New(dataDir)
	if indexDSN == "" {
		return st, func() {}, nil
	}
	idx, err := storage.OpenIndex(indexDSN, log)
	if err != nil {
		return nil, nil, err
	}
	return st.WithIndex(idx), func() { _ = idx.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
