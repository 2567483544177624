// Package importer bulk-loads measurements from a JSON array of records into
// the store. It runs out-of-band from request serving.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"sensorboard/internal/modules/measurements/repository"
	"sensorboard/internal/modules/measurements/types"
)

// Offset-less date-times are read in the configured location; a bare date is
// UTC midnight.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

const dateOnlyLayout = "2006-01-02"

// record is one element of the input array. Numeric fields accept JSON
// numbers, numeric strings, null, or "" for a missing value.
type record struct {
	Timestamp   string `json:"timestamp"`
	Temperature number `json:"temperature"`
	Humidity    number `json:"humidity"`
	WindSpeed   number `json:"windSpeed"`
}

type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = number{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = number{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		return n.assign(v)
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return n.assign(v)
}

func (n *number) assign(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("number must be finite")
	}
	*n = number{value: v, set: true}
	return nil
}

func (n number) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.value
	return &v
}

// Parse decodes the whole input. Any invalid record fails the parse with its
// zero-based index in the error.
func Parse(r io.Reader, loc *time.Location) ([]types.Measurement, error) {
	if loc == nil {
		loc = time.Local
	}
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	out := make([]types.Measurement, 0, len(raw))
	for i, msg := range raw {
		var rec record
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ts, err := ParseTimestamp(rec.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if !rec.Temperature.set {
			return nil, fmt.Errorf("record %d: temperature is required", i)
		}
		out = append(out, types.Measurement{
			Timestamp:   ts,
			Temperature: rec.Temperature.value,
			Humidity:    rec.Humidity.ptr(),
			WindSpeed:   rec.WindSpeed.ptr(),
		})
	}
	return out, nil
}

// ParseTimestamp accepts RFC 3339 (with offset), offset-less date-times in
// loc, and bare dates at UTC midnight.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("timestamp is required")
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	if ts, err := time.Parse(dateOnlyLayout, s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Import parses r and writes every record in one transaction.
func Import(ctx context.Context, r io.Reader, w repository.MeasurementWriter, loc *time.Location) (int, error) {
	ms, err := Parse(r, loc)
	if err != nil {
		return 0, err
	}
	return w.InsertMeasurements(ctx, ms)
}

// ImportFile imports the JSON file at path.
func ImportFile(ctx context.Context, path string, w repository.MeasurementWriter, loc *time.Location, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open import file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warn("close import file", "path", path, "error", closeErr)
		}
	}()

	start := time.Now()
	n, err := Import(ctx, f, w, loc)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}
	logger.Info("import finished", "path", path, "inserted", n, "duration_ms", time.Since(start).Milliseconds())
	return n, nil
}
