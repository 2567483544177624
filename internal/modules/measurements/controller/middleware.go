package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"sensorboard/internal/modules/measurements/daterange"
	"sensorboard/internal/utils"
)

// requireQuery normalizes field and range parameters and stores the result on
// the request context. Invalid requests are answered with 400 and never reach
// next.
func (c *measurementsControllerImpl) requireQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q, err := daterange.Normalize(r.URL.Query(), c.location)
		if err != nil {
			c.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(daterange.WithQuery(r.Context(), q)))
	})
}

func (c *measurementsControllerImpl) reject(w http.ResponseWriter, r *http.Request, err error) {
	var verr *daterange.ValidationError
	if !errors.As(err, &verr) {
		slog.Error("normalize query", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if c.observer != nil {
		c.observer.ValidationRejected(verr.KindName())
	}
	slog.Debug("query rejected", "path", r.URL.Path, "kind", verr.KindName(), "raw_query", r.URL.RawQuery)
	utils.WriteError(w, http.StatusBadRequest, verr.Message)
}
