package repository

import (
	"context"
	"time"

	"sensorboard/internal/modules/measurements/daterange"
	"sensorboard/internal/modules/measurements/types"
)

// QueryObserver records the duration and outcome ("ok" or "error") of one
// store operation.
type QueryObserver interface {
	ObserveQuery(operation, outcome string, d time.Duration)
}

type instrumentedReader struct {
	next     MeasurementReader
	observer QueryObserver
}

// NewInstrumentedReader reports every call on next to obs. A nil obs returns
// next unchanged.
func NewInstrumentedReader(next MeasurementReader, obs QueryObserver) MeasurementReader {
	if obs == nil {
		return next
	}
	return &instrumentedReader{next: next, observer: obs}
}

func (r *instrumentedReader) GetSeries(ctx context.Context, field daterange.Field, rng daterange.Range) ([]types.SeriesPoint, error) {
	start := time.Now()
	out, err := r.next.GetSeries(ctx, field, rng)
	r.observer.ObserveQuery("series", outcome(err), time.Since(start))
	return out, err
}

func (r *instrumentedReader) GetMetrics(ctx context.Context, field daterange.Field, rng daterange.Range) (*types.Metrics, error) {
	start := time.Now()
	out, err := r.next.GetMetrics(ctx, field, rng)
	r.observer.ObserveQuery("metrics", outcome(err), time.Since(start))
	return out, err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
