package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is the database row for one stored run.
type RunRecord struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"index"`
	DroneID    string `gorm:"index"`
	Integrator string
	Autopilot  string
	Dt         float64
	Duration   float64
	Steps      int
	Failed     bool
	Error      string
	Metrics    datatypes.JSON
	CreatedAt  time.Time
}

func (RunRecord) TableName() string { return "runs" }

// MetricValues decodes the stored metrics.
func (r RunRecord) MetricValues() (map[string]float64, error) {
	out := make(map[string]float64)
	if len(r.Metrics) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.Metrics, &out); err != nil {
		return nil, fmt.Errorf("decode metrics of %s: %w", r.ID, err)
	}
	return out, nil
}

// Filter narrows a Query. Zero fields match everything.
type Filter struct {
	Name       string
	DroneID    string
	FailedOnly bool
	Limit      int
}

// Index keeps run metadata in SQLite or Postgres so runs can be queried
// without walking the run directories.
type Index struct {
	db  *gorm.DB
	log zerolog.Logger
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.HasPrefix(dsn, "host=")
}

// OpenIndex connects to dsn: a Postgres URL or key/value DSN, a SQLite
// file path, or "" for an in-memory SQLite database.
func OpenIndex(dsn string, log zerolog.Logger) (*Index, error) {
	gcfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch {
	case isPostgres(dsn):
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gcfg)
		if err == nil {
			log.Info().Msg("using postgres run index")
		}
	case dsn == "":
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), gcfg)
		if err == nil {
			log.Info().Msg("using in-memory run index")
		}
	default:
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
		if err == nil {
			log.Info().Str("path", dsn).Msg("using sqlite run index")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open run index: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrate run index: %w", err)
	}
	return &Index{db: db, log: log}, nil
}

// Record inserts or replaces the row for meta.
func (i *Index) Record(meta RunMetadata) error {
	raw, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}
	rec := RunRecord{
		ID:         meta.ID,
		Name:       meta.Name,
		DroneID:    meta.DroneID,
		Integrator: meta.Integrator,
		Autopilot:  meta.Autopilot,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      meta.Steps,
		Failed:     meta.Error != "",
		Error:      meta.Error,
		Metrics:    datatypes.JSON(raw),
		CreatedAt:  meta.Timestamp,
	}
	if err := i.db.Save(&rec).Error; err != nil {
		return err
	}
	i.log.Debug().Str("run", meta.ID).Msg("indexed run")
	return nil
}

// Get returns the row for id.
func (i *Index) Get(id string) (*RunRecord, error) {
	var rec RunRecord
	err := i.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Query returns matching runs, newest first.
func (i *Index) Query(f Filter) ([]RunRecord, error) {
	q := i.db.Model(&RunRecord{})
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	if f.DroneID != "" {
		q = q.Where("drone_id = ?", f.DroneID)
	}
	if f.FailedOnly {
		q = q.Where("failed = ?", true)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []RunRecord
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (i *Index) Delete(id string) error {
	return i.db.Delete(&RunRecord{}, "id = ?", id).Error
}

func (i *Index) Close() error {
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
