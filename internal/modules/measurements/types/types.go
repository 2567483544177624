package types

import (
	"bytes"
	"encoding/json"
	"time"

	"sensorboard/internal/modules/measurements/daterange"
)

// TimestampLayout matches the ISO-8601 form the dashboard parses:
// UTC, millisecond precision, trailing Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Measurement is one stored sensor reading. Optional sensors are nil when the
// station did not report them.
type Measurement struct {
	Timestamp   time.Time
	Temperature float64
	Humidity    *float64
	WindSpeed   *float64
}

// SeriesPoint is one row of a series response: the timestamp plus the value of
// the requested field. A nil Value omits the field key, as a document
// projection of a missing field would.
type SeriesPoint struct {
	Timestamp time.Time
	Field     daterange.Field
	Value     *float64
}

func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"timestamp":`)
	ts, err := json.Marshal(p.Timestamp.UTC().Format(TimestampLayout))
	if err != nil {
		return nil, err
	}
	b.Write(ts)
	if p.Value != nil {
		key, err := json.Marshal(p.Field.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(*p.Value)
		if err != nil {
			return nil, err
		}
		b.WriteByte(',')
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Metrics summarizes one field over a range. StdDev is the population
// standard deviation. Count is the number of non-null values aggregated.
type Metrics struct {
	Avg    float64
	Min    float64
	Max    float64
	StdDev float64
	Count  int
}

// MetricsResponse is the wire form of a metrics answer. All fields are null
// when no value matched.
type MetricsResponse struct {
	Avg    *float64 `json:"avg"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	StdDev *float64 `json:"stdDev"`
}

// NewMetricsResponse renders m, mapping a nil m to the all-null response.
func NewMetricsResponse(m *Metrics) MetricsResponse {
	if m == nil {
		return MetricsResponse{}
	}
	avg, lo, hi, sd := m.Avg, m.Min, m.Max, m.StdDev
	return MetricsResponse{Avg: &avg, Min: &lo, Max: &hi, StdDev: &sd}
}
