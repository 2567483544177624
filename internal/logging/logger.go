package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"sensorboard/internal/config"
)

// DevVersion is the version string of binaries built without -ldflags.
const DevVersion = "dev"

// New returns the process logger. Development builds get colourised tint
// output with source locations; release builds emit JSON tagged with the
// version and environment.
func New(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	if version == DevVersion {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.AppEnv == "prod",
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
