// Package daterange turns raw query parameters into a validated field and a
// half-open time interval. Everything here is pure; nothing touches the store.
package daterange

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// maxAbsMillis bounds millisecond inputs to ±100,000,000 days around the epoch,
// the range of an ECMAScript Date.
const maxAbsMillis = 8.64e15

// Range is the interval [Start, EndExclusive). Start is always strictly
// before EndExclusive for values produced by this package.
type Range struct {
	Start        time.Time
	EndExclusive time.Time
}

// Query is a normalized request: one field over one interval.
type Query struct {
	Field Field
	Range Range
}

// RangeInput is one of the two accepted parameter shapes. Call Resolve once
// at the request boundary to obtain the canonical Range.
type RangeInput interface {
	Resolve(loc *time.Location) (Range, error)
	isRangeInput()
}

// CalendarInput holds inclusive YYYY-MM-DD dates.
type CalendarInput struct {
	StartDate string
	EndDate   string
}

// MillisInput holds Unix millisecond bounds; the end is already exclusive.
type MillisInput struct {
	StartMs        string
	EndExclusiveMs string
}

func (c CalendarInput) Resolve(loc *time.Location) (Range, error) {
	return ParseCalendarRange(c.StartDate, c.EndDate, loc)
}

func (CalendarInput) isRangeInput() {}

func (m MillisInput) Resolve(*time.Location) (Range, error) {
	return ParseMillisRange(m.StartMs, m.EndExclusiveMs)
}

func (MillisInput) isRangeInput() {}

// InputFrom picks the parameter shape. The millisecond shape wins whenever
// either of its parameters is present, even if left empty. A range parameter
// given more than once is rejected with the message of the chosen shape.
func InputFrom(values url.Values) (RangeInput, error) {
	if values.Has("startMs") || values.Has("endExclusiveMs") {
		if repeated(values, rangeKeys...) {
			return nil, invalidMillis()
		}
		return MillisInput{
			StartMs:        values.Get("startMs"),
			EndExclusiveMs: values.Get("endExclusiveMs"),
		}, nil
	}
	if repeated(values, rangeKeys...) {
		return nil, invalidDates()
	}
	return CalendarInput{
		StartDate: values.Get("start_date"),
		EndDate:   values.Get("end_date"),
	}, nil
}

var rangeKeys = []string{"start_date", "end_date", "startMs", "endExclusiveMs"}

func repeated(values url.Values, keys ...string) bool {
	for _, k := range keys {
		if len(values[k]) > 1 {
			return true
		}
	}
	return false
}

// Normalize validates the field first, then the range, so an unknown field is
// reported regardless of the range parameters. Exactly one field is allowed.
func Normalize(values url.Values, loc *time.Location) (Query, error) {
	if len(values["field"]) > 1 {
		return Query{}, invalidField()
	}
	field, err := ParseField(values.Get("field"))
	if err != nil {
		return Query{}, err
	}
	in, err := InputFrom(values)
	if err != nil {
		return Query{}, err
	}
	rng, err := in.Resolve(loc)
	if err != nil {
		return Query{}, err
	}
	return Query{Field: field, Range: rng}, nil
}

// ParseCalendarRange parses two inclusive calendar dates as midnight in loc
// and extends the end by one calendar day so the whole end date is covered.
// A nil loc means time.Local.
func ParseCalendarRange(startDate, endDate string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(startDate), loc)
	if err != nil {
		return Range{}, invalidDates()
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(endDate), loc)
	if err != nil {
		return Range{}, invalidDates()
	}
	if start.After(end) {
		return Range{}, invalidDates()
	}
	return Range{Start: start, EndExclusive: end.AddDate(0, 0, 1)}, nil
}

// ParseMillisRange parses two finite millisecond timestamps and requires
// start < endExclusive. Fractional milliseconds are kept.
func ParseMillisRange(startMs, endExclusiveMs string) (Range, error) {
	start, err := parseMillis(startMs)
	if err != nil {
		return Range{}, err
	}
	end, err := parseMillis(endExclusiveMs)
	if err != nil {
		return Range{}, err
	}
	if !start.Before(end) {
		return Range{}, invalidMillis()
	}
	return Range{Start: start, EndExclusive: end}, nil
}

func parseMillis(s string) (time.Time, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxAbsMillis {
		return time.Time{}, invalidMillis()
	}
	sec := math.Floor(v / 1000)
	nsec := math.Round((v - sec*1000) * 1e6)
	return time.Unix(int64(sec), int64(nsec)), nil
}

type ctxKey struct{}

// WithQuery stores a normalized query on ctx for downstream handlers.
func WithQuery(ctx context.Context, q Query) context.Context {
	return context.WithValue(ctx, ctxKey{}, q)
}

// FromContext returns the query stored by WithQuery.
func FromContext(ctx context.Context) (Query, bool) {
	q, ok := ctx.Value(ctxKey{}).(Query)
	return q, ok
}
