package importer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "time/tzdata"

	"sensorboard/internal/migrate"
	"sensorboard/internal/modules/measurements/daterange"
	"sensorboard/internal/modules/measurements/repository"
)

func setupRepo(t *testing.T) repository.MeasurementRepository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if _, err := migrate.Run(context.Background(), db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewRepository(db)
}

func TestParse(t *testing.T) {
	in := `[
		{"timestamp": "2024-01-01T10:00:00Z", "temperature": 21.5, "humidity": 40, "windSpeed": 3.1},
		{"timestamp": "2024-01-01T11:00:00.250+02:00", "temperature": "22", "humidity": null},
		{"timestamp": "2024-01-01 12:30:00", "temperature": -3, "windSpeed": ""},
		{"timestamp": "2024-01-02", "temperature": 0, "_id": "ignored"}
	]`

	got, err := Parse(strings.NewReader(in), time.UTC)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Parse: got %d records, want 4", len(got))
	}

	if !got[0].Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("record 0 timestamp = %s", got[0].Timestamp)
	}
	if got[0].Humidity == nil || *got[0].Humidity != 40 || got[0].WindSpeed == nil || *got[0].WindSpeed != 3.1 {
		t.Errorf("record 0 optional fields = %v, %v", got[0].Humidity, got[0].WindSpeed)
	}
	if !got[1].Timestamp.Equal(time.Date(2024, 1, 1, 9, 0, 0, 250_000_000, time.UTC)) {
		t.Errorf("record 1 timestamp = %s", got[1].Timestamp)
	}
	if got[1].Temperature != 22 || got[1].Humidity != nil {
		t.Errorf("record 1 = %+v; want temperature 22 from string and nil humidity", got[1])
	}
	if got[2].Temperature != -3 || got[2].WindSpeed != nil {
		t.Errorf("record 2 = %+v; want empty windSpeed as nil", got[2])
	}
	if got[3].Temperature != 0 || got[3].Humidity != nil || got[3].WindSpeed != nil {
		t.Errorf("record 3 = %+v", got[3])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"not an array", `{"timestamp":"2024-01-01"}`, "decode records"},
		{"malformed json", `[{"timestamp":`, "decode records"},
		{"bad timestamp", `[{"timestamp":"2024-01-01T00:00:00Z","temperature":1},{"timestamp":"yesterday","temperature":1}]`, "record 1: invalid timestamp"},
		{"missing timestamp", `[{"temperature":1}]`, "record 0: timestamp is required"},
		{"missing temperature", `[{"timestamp":"2024-01-01"}]`, "record 0: temperature is required"},
		{"null temperature", `[{"timestamp":"2024-01-01","temperature":null}]`, "record 0: temperature is required"},
		{"non-numeric humidity", `[{"timestamp":"2024-01-01","temperature":1,"humidity":"wet"}]`, "record 0: not a number"},
		{"boolean wind speed", `[{"timestamp":"2024-01-01","temperature":1,"windSpeed":true}]`, "record 0"},
		{"infinite string", `[{"timestamp":"2024-01-01","temperature":"Inf"}]`, "record 0: number must be finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in), time.UTC)
			if err == nil {
				t.Fatal("Parse: want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseTimestamp_Location(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-07-01T12:00:00", time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-07-01 12:00:00.5", time.Date(2024, 7, 1, 10, 0, 0, 500_000_000, time.UTC)},
		{"2024-07-01T12:00", time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-07-01T12:00:00Z", time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-07-01", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in, berlin)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %s; want %s", tt.in, got.UTC(), tt.want)
		}
	}
}

func TestImport(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	in := `[
		{"timestamp": "2024-01-01T00:00:00Z", "temperature": 2},
		{"timestamp": "2024-01-01T01:00:00Z", "temperature": 4, "humidity": 50}
	]`
	n, err := Import(ctx, strings.NewReader(in), repo, time.UTC)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("Import = %d; want 2", n)
	}

	rng, err := daterange.ParseCalendarRange("2024-01-01", "2024-01-01", time.UTC)
	if err != nil {
		t.Fatalf("ParseCalendarRange: %v", err)
	}
	series, err := repo.GetSeries(ctx, daterange.FieldHumidity, rng)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if len(series) != 2 || series[0].Value != nil || series[1].Value == nil || *series[1].Value != 50 {
		t.Errorf("humidity series = %+v", series)
	}
}

func TestImport_InvalidLeavesStoreEmpty(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	in := `[
		{"timestamp": "2024-01-01T00:00:00Z", "temperature": 2},
		{"timestamp": "not a time", "temperature": 4}
	]`
	if _, err := Import(ctx, strings.NewReader(in), repo, time.UTC); err == nil {
		t.Fatal("Import: want error")
	}
	n, err := repo.CountMeasurements(ctx)
	if err != nil {
		t.Fatalf("CountMeasurements: %v", err)
	}
	if n != 0 {
		t.Errorf("CountMeasurements = %d; want 0", n)
	}
}

func TestImportFile(t *testing.T) {
	repo := setupRepo(t)
	path := filepath.Join(t.TempDir(), "measurements.json")
	if err := os.WriteFile(path, []byte(`[{"timestamp":"2024-01-01T00:00:00Z","temperature":1}]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	n, err := ImportFile(context.Background(), path, repo, time.UTC, nil)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if n != 1 {
		t.Errorf("ImportFile = %d; want 1", n)
	}

	if _, err := ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), repo, time.UTC, nil); err == nil {
		t.Error("ImportFile(missing): want error")
	}
}
