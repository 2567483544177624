package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sensorboard/internal/config"
	"sensorboard/internal/importer"
	"sensorboard/internal/migrate"
	"sensorboard/internal/modules/measurements/repository"
)

const fixture = `[
	{"timestamp": "2023-12-31T23:30:00Z", "temperature": 100},
	{"timestamp": "2024-01-01T00:00:00Z", "temperature": 2, "humidity": 40},
	{"timestamp": "2024-01-01T03:00:00Z", "temperature": 4},
	{"timestamp": "2024-01-01T06:00:00Z", "temperature": 4, "humidity": 60},
	{"timestamp": "2024-01-01T09:00:00Z", "temperature": 4},
	{"timestamp": "2024-01-01T12:00:00Z", "temperature": 5},
	{"timestamp": "2024-01-01T15:00:00Z", "temperature": 5},
	{"timestamp": "2024-01-01T18:00:00Z", "temperature": 7},
	{"timestamp": "2024-01-01T21:00:00Z", "temperature": 9},
	{"timestamp": "2024-01-02T00:00:00Z", "temperature": -100}
]`

func newTestApp(t *testing.T) *httptest.Server {
	t.Helper()
	dbConn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	dbConn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = dbConn.Close() })

	ctx := context.Background()
	if _, err := migrate.Run(ctx, dbConn, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := importer.Import(ctx, strings.NewReader(fixture), repository.NewRepository(dbConn), time.UTC); err != nil {
		t.Fatalf("import: %v", err)
	}

	cfg := config.Config{
		HTTPAddr:           ":0",
		Location:           time.UTC,
		CORSAllowedOrigins: []string{"*"},
	}
	ts := httptest.NewServer(NewServer(cfg, dbConn).Handler)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func TestSeries_SingleCalendarDay(t *testing.T) {
	ts := newTestApp(t)

	status, body := get(t, ts, "/api/measurements?field=temperature&start_date=2024-01-01&end_date=2024-01-01")
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%s", status, body)
	}

	var points []map[string]any
	if err := json.Unmarshal([]byte(body), &points); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(points) != 8 {
		t.Fatalf("points=%d want=8", len(points))
	}
	prev := ""
	for i, p := range points {
		stamp, _ := p["timestamp"].(string)
		if !strings.HasPrefix(stamp, "2024-01-01T") {
			t.Errorf("point %d timestamp=%q outside 2024-01-01", i, stamp)
		}
		if stamp < prev {
			t.Errorf("point %d out of order", i)
		}
		prev = stamp
		if _, ok := p["humidity"]; ok {
			t.Errorf("point %d has humidity; only the requested field is projected", i)
		}
		if len(p) != 2 {
			t.Errorf("point %d has keys %v; want timestamp and temperature", i, p)
		}
	}
}

func TestSeries_OmitsMissingOptionalField(t *testing.T) {
	ts := newTestApp(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC).UnixMilli()
	status, body := get(t, ts, "/api/measurements?field=humidity&startMs="+itoa(start)+"&endExclusiveMs="+itoa(end))
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%s", status, body)
	}
	want := `[{"timestamp":"2024-01-01T00:00:00.000Z","humidity":40},{"timestamp":"2024-01-01T03:00:00.000Z"},{"timestamp":"2024-01-01T06:00:00.000Z","humidity":60}]`
	if strings.TrimSpace(body) != want {
		t.Errorf("body=%s want=%s", body, want)
	}
}

func TestMetrics_PopulationStdDev(t *testing.T) {
	ts := newTestApp(t)

	status, body := get(t, ts, "/api/measurements/metrics?field=temperature&start_date=2024-01-01&end_date=2024-01-01")
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%s", status, body)
	}
	if strings.TrimSpace(body) != `{"avg":5,"min":2,"max":9,"stdDev":2}` {
		t.Errorf("body=%s", body)
	}
}

func TestMetrics_NoData(t *testing.T) {
	ts := newTestApp(t)

	status, body := get(t, ts, "/api/measurements/metrics?field=windSpeed&start_date=2024-01-01&end_date=2024-01-01")
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%s", status, body)
	}
	if strings.TrimSpace(body) != `{"avg":null,"min":null,"max":null,"stdDev":null}` {
		t.Errorf("body=%s", body)
	}
}

func TestValidationFailures(t *testing.T) {
	ts := newTestApp(t)

	tests := []struct {
		path    string
		wantErr string
	}{
		{"/api/measurements?field=bogus&start_date=2024-01-01&end_date=2024-01-01", "Invalid field"},
		{"/api/measurements?field=temperature&startMs=100&endExclusiveMs=100", "Invalid range"},
		{"/api/measurements/metrics?field=temperature&start_date=2024-01-02&end_date=2024-01-01", "Invalid date range"},
	}
	for _, tt := range tests {
		status, body := get(t, ts, tt.path)
		if status != http.StatusBadRequest {
			t.Errorf("%s: status=%d want=%d", tt.path, status, http.StatusBadRequest)
		}
		var envelope map[string]string
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			t.Fatalf("%s: decode: %v", tt.path, err)
		}
		if !strings.HasPrefix(envelope["error"], tt.wantErr) {
			t.Errorf("%s: error=%q want prefix %q", tt.path, envelope["error"], tt.wantErr)
		}
	}

	_, scrape := get(t, ts, "/metrics")
	for _, want := range []string{
		`sensorboard_validation_rejections_total{kind="invalid_field"} 1`,
		`sensorboard_validation_rejections_total{kind="invalid_range"} 2`,
	} {
		if !strings.Contains(scrape, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestMetricsEndpoint_RecordsQueries(t *testing.T) {
	ts := newTestApp(t)

	get(t, ts, "/api/measurements?field=temperature&start_date=2024-01-01&end_date=2024-01-01")
	get(t, ts, "/api/measurements/metrics?field=temperature&start_date=2024-01-01&end_date=2024-01-01")

	status, scrape := get(t, ts, "/metrics")
	if status != http.StatusOK {
		t.Fatalf("status=%d", status)
	}
	for _, want := range []string{
		`sensorboard_store_query_duration_seconds_count{operation="series",outcome="ok"} 1`,
		`sensorboard_store_query_duration_seconds_count{operation="metrics",outcome="ok"} 1`,
		`sensorboard_http_requests_total{method="GET",route="GET /api/measurements",status="200"} 1`,
		`sensorboard_http_requests_total{method="GET",route="GET /api/measurements/metrics",status="200"} 1`,
	} {
		if !strings.Contains(scrape, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestApp(t)

	status, body := get(t, ts, "/healthz")
	if status != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("status=%d body=%s", status, body)
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
