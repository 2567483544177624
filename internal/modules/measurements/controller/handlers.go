package controller

import (
	"log/slog"
	"net/http"

	"sensorboard/internal/modules/measurements/daterange"
	"sensorboard/internal/modules/measurements/types"
	"sensorboard/internal/utils"
)

func (c *measurementsControllerImpl) handleSeries(w http.ResponseWriter, r *http.Request) {
	q, ok := daterange.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusInternalServerError, "missing normalized query")
		return
	}

	series, err := c.repository.GetSeries(r.Context(), q.Field, q.Range)
	if err != nil {
		slog.Error("series query failed", "field", q.Field, "start", q.Range.Start, "end_exclusive", q.Range.EndExclusive, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if series == nil {
		series = []types.SeriesPoint{}
	}
	utils.WriteJSON(w, http.StatusOK, series)
}

func (c *measurementsControllerImpl) handleMetrics(w http.ResponseWriter, r *http.Request) {
	q, ok := daterange.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusInternalServerError, "missing normalized query")
		return
	}

	m, err := c.repository.GetMetrics(r.Context(), q.Field, q.Range)
	if err != nil {
		slog.Error("metrics query failed", "field", q.Field, "start", q.Range.Start, "end_exclusive", q.Range.EndExclusive, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	count := 0
	if m != nil {
		count = m.Count
	}
	slog.Debug("metrics computed", "field", q.Field, "start", q.Range.Start, "end_exclusive", q.Range.EndExclusive, "count", count)
	utils.WriteJSON(w, http.StatusOK, types.NewMetricsResponse(m))
}
