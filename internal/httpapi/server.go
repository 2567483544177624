package httpapi

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"sensorboard/internal/config"
)

// NewServer wraps handler with CORS, request logging, panic recovery and,
// when obs is non-nil, request metrics.
func NewServer(cfg config.Config, handler http.Handler, obs RequestObserver) *http.Server {
	h := recoverer(handler)
	if obs != nil {
		h = instrument(obs, h)
	}
	h = requestLogger(h)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           c.Handler(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
