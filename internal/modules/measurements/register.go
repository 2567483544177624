package measurements

import (
	"database/sql"
	"net/http"
	"time"

	"sensorboard/internal/metrics"
	"sensorboard/internal/modules/measurements/controller"
	"sensorboard/internal/modules/measurements/repository"
)

// RegisterFeature mounts the measurements API on mux. m may be nil.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, loc *time.Location, m *metrics.Metrics) {
	var reader repository.MeasurementReader = repository.NewRepository(db)
	var observer controller.Observer
	if m != nil {
		reader = repository.NewInstrumentedReader(reader, m)
		observer = m
	}
	measurementsController := controller.NewMeasurementsController(reader, loc, observer)
	measurementsController.RegisterRoutes(mux)
}
