package controller

import (
	"net/http"
	"time"

	"sensorboard/internal/modules/measurements/repository"
)

// Observer is told about requests rejected before reaching the store.
type Observer interface {
	ValidationRejected(kind string)
}

type MeasurementsController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type measurementsControllerImpl struct {
	repository repository.MeasurementReader
	location   *time.Location
	observer   Observer
}

// NewMeasurementsController serves series and metrics from repo. Calendar
// dates are read in loc; a nil loc means time.Local. obs may be nil.
func NewMeasurementsController(repo repository.MeasurementReader, loc *time.Location, obs Observer) MeasurementsController {
	if loc == nil {
		loc = time.Local
	}
	return &measurementsControllerImpl{repository: repo, location: loc, observer: obs}
}

func (c *measurementsControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/measurements", c.requireQuery(http.HandlerFunc(c.handleSeries)))
	mux.Handle("GET /api/measurements/metrics", c.requireQuery(http.HandlerFunc(c.handleMetrics)))
}
