package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	"sensorboard/internal/utils"
)

// NewMux registers the operational routes. Feature modules add their own
// routes to the returned mux. metricsHandler and staticDir are optional; the
// static directory is served at / only when it exists. Unknown paths under
// /api/ answer with the JSON error envelope.
func NewMux(db *sql.DB, staticDir string, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	mux.HandleFunc("GET /api/", apiNotFound)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
		} else {
			slog.Warn("static dir not served", "dir", staticDir, "error", err)
		}
	}
	return mux
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "not found")
}
