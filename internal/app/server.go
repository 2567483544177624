package app

import (
	"database/sql"
	"net/http"

	"sensorboard/internal/config"
	"sensorboard/internal/httpapi"
	"sensorboard/internal/metrics"
	"sensorboard/internal/modules/measurements"
)

// NewServer assembles the full HTTP surface over an open, migrated database.
func NewServer(cfg config.Config, dbConn *sql.DB) *http.Server {
	m := metrics.New()
	mux := httpapi.NewMux(dbConn, cfg.StaticDir, m.Handler())
	measurements.RegisterFeature(mux, dbConn, cfg.Location, m)
	return httpapi.NewServer(cfg, mux, m)
}
