// Package telemetry publishes driver samples outside the process: as
// InfluxDB points, as OpenTelemetry instruments and as a websocket stream.
// Every publisher here satisfies testbed.Observer.
package telemetry

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/tyre"
)

const Measurement = "drone_state"

type InfluxConfig struct {
	URL        string `yaml:"url"`
	Token      string `yaml:"token"`
	Org        string `yaml:"org"`
	Bucket     string `yaml:"bucket"`
	BackupPath string `yaml:"backup_path"`
}

// InfluxSink writes one point per tick. When the server cannot be reached
// points are appended as gzip line protocol to a backup file instead.
type InfluxSink struct {
	droneID string
	start   time.Time
	log     zerolog.Logger

	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	mu       sync.Mutex
	backup   io.Writer
	closers  []io.Closer
	writeErr error
}

// NewInfluxSink connects to cfg.URL. start is the wall-clock time that
// simulation time zero maps to.
func NewInfluxSink(ctx context.Context, cfg InfluxConfig, droneID string, start time.Time, log zerolog.Logger) (*InfluxSink, error) {
	s := &InfluxSink{droneID: droneID, start: start, log: log}

	s.client = influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(1000).
			SetFlushInterval(1000))

	running, err := s.client.Ping(ctx)
	if err == nil && running {
		s.writer = s.client.WriteAPI(cfg.Org, cfg.Bucket)
		go func(errs <-chan error) {
			for writeErr := range errs {
				log.Error().Err(writeErr).Str("bucket", cfg.Bucket).Msg("influx write failed")
			}
		}(s.writer.Errors())
		log.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("influx telemetry enabled")
		return s, nil
	}

	s.client.Close()
	s.client = nil
	if cfg.BackupPath == "" {
		return nil, fmt.Errorf("influx at %s unreachable and no backup path set: %v", cfg.URL, err)
	}

	f, ferr := os.OpenFile(cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if ferr != nil {
		return nil, fmt.Errorf("open influx backup file: %w", ferr)
	}
	gz := gzip.NewWriter(f)
	s.backup = gz
	s.closers = []io.Closer{gz, f}
	log.Warn().Str("backup", cfg.BackupPath).Msg("influx unreachable, writing line protocol backup")
	return s, nil
}

// NewBackupSink writes plain line protocol to w.
func NewBackupSink(w io.Writer, droneID string, start time.Time) *InfluxSink {
	return &InfluxSink{droneID: droneID, start: start, log: zerolog.Nop(), backup: w}
}

// SamplePoint converts one sample into an InfluxDB point.
func SamplePoint(droneID string, start time.Time, s metrics.Sample) *influxdb2_write.Point {
	fields := make(map[string]interface{}, kinematics.Dim+8)
	for i, v := range s.State.Vector() {
		fields[kinematics.SlotNames[i]] = v
	}
	for i, r := range tyre.Roles {
		fields["depth_"+r.String()] = s.Depths[i]
	}
	fields["grounded"] = s.Grounded
	fields["thrust"] = s.Outputs.Thrust
	brakes := s.Outputs.Brakes()
	fields["brake_total"] = brakes[0] + brakes[1] + brakes[2]

	ts := start.Add(time.Duration(s.Time * float64(time.Second)))
	return influxdb2_write.NewPoint(Measurement, map[string]string{"drone": droneID}, fields, ts)
}

func (s *InfluxSink) OnTick(smp metrics.Sample) {
	p := SamplePoint(s.droneID, s.start, smp)
	if s.writer != nil {
		s.writer.WritePoint(p)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return
	}
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	if _, err := io.WriteString(s.backup, line+"\n"); err != nil {
		s.writeErr = err
		s.log.Error().Err(err).Msg("influx backup write failed")
	}
}

// Err is the first backup write error, if any.
func (s *InfluxSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErr
}

// Close flushes pending points and releases the client or backup file.
func (s *InfluxSink) Close() error {
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.client != nil {
		s.client.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			return err
		}
	}
	s.closers = nil
	return s.writeErr
}
