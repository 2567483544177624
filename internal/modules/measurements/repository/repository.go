package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"time"

	"sensorboard/internal/modules/measurements/daterange"
	"sensorboard/internal/modules/measurements/types"
)

//go:embed sql/get-series.sql
var getSeriesSQL string

//go:embed sql/get-metrics.sql
var getMetricsSQL string

//go:embed sql/insert-measurement.sql
var insertMeasurementSQL string

//go:embed sql/count-measurements.sql
var countMeasurementsSQL string

// MeasurementReader is the read side used by the HTTP API.
type MeasurementReader interface {
	// GetSeries returns every reading in rng ordered by timestamp. An empty
	// range yields an empty, non-nil slice.
	GetSeries(ctx context.Context, field daterange.Field, rng daterange.Range) ([]types.SeriesPoint, error)
	// GetMetrics aggregates field over rng. It returns nil, nil when no
	// non-null value matched.
	GetMetrics(ctx context.Context, field daterange.Field, rng daterange.Range) (*types.Metrics, error)
}

// MeasurementWriter is used by the bulk importer only.
type MeasurementWriter interface {
	InsertMeasurements(ctx context.Context, ms []types.Measurement) (int, error)
	CountMeasurements(ctx context.Context) (int, error)
}

type MeasurementRepository interface {
	MeasurementReader
	MeasurementWriter
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) MeasurementRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetSeries(ctx context.Context, field daterange.Field, rng daterange.Range) ([]types.SeriesPoint, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("get series: unknown field %q", field)
	}
	from, to := bounds(rng)
	rows, err := r.db.QueryContext(ctx, getSeriesSQL, field.String(), from, to)
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close series rows", "error", err)
		}
	}()

	out := make([]types.SeriesPoint, 0)
	for rows.Next() {
		var (
			tsMs  int64
			value sql.NullFloat64
		)
		if err := rows.Scan(&tsMs, &value); err != nil {
			return nil, fmt.Errorf("get series: scan: %w", err)
		}
		p := types.SeriesPoint{Timestamp: time.UnixMilli(tsMs).UTC(), Field: field}
		if value.Valid {
			v := value.Float64
			p.Value = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	return out, nil
}

func (r *repositoryImpl) GetMetrics(ctx context.Context, field daterange.Field, rng daterange.Range) (*types.Metrics, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("get metrics: unknown field %q", field)
	}
	from, to := bounds(rng)

	var (
		n                      int
		mean, lo, hi, variance sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, getMetricsSQL, field.String(), from, to).Scan(&n, &mean, &lo, &hi, &variance)
	if err != nil {
		return nil, fmt.Errorf("get metrics: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return &types.Metrics{
		Avg:    mean.Float64,
		Min:    lo.Float64,
		Max:    hi.Float64,
		StdDev: math.Sqrt(math.Max(variance.Float64, 0)),
		Count:  n,
	}, nil
}

// InsertMeasurements stores ms in a single transaction; either every row is
// written or none is.
func (r *repositoryImpl) InsertMeasurements(ctx context.Context, ms []types.Measurement) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert measurements: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertMeasurementSQL)
	if err != nil {
		return 0, fmt.Errorf("insert measurements: prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, m := range ms {
		if _, err := stmt.ExecContext(ctx, m.Timestamp.UnixMilli(), m.Temperature, nullable(m.Humidity), nullable(m.WindSpeed)); err != nil {
			return 0, fmt.Errorf("insert measurements: record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert measurements: commit: %w", err)
	}
	return len(ms), nil
}

func (r *repositoryImpl) CountMeasurements(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countMeasurementsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return n, nil
}

// bounds converts rng to integer millisecond bounds. Stored timestamps are
// whole milliseconds, so rounding both ends up keeps the comparison exact:
// ts >= start  <=>  ts >= ceil(start), and ts < end  <=>  ts < ceil(end).
func bounds(rng daterange.Range) (int64, int64) {
	return ceilMillis(rng.Start), ceilMillis(rng.EndExclusive)
}

func ceilMillis(t time.Time) int64 {
	ms := t.UnixMilli()
	if t.Nanosecond()%int(time.Millisecond) != 0 {
		ms++
	}
	return ms
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
