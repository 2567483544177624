package daterange

import "errors"

var (
	ErrInvalidField = errors.New("invalid field")
	ErrInvalidRange = errors.New("invalid range")
)

const (
	msgInvalidDates    = "Invalid date range. Use YYYY-MM-DD and start_date <= end_date"
	msgInvalidMillisec = "Invalid range. Use numeric startMs < endExclusiveMs"
)

var msgInvalidField = "Invalid field. Use: " + fieldNames()

// ValidationError is a rejected request. Kind is ErrInvalidField or
// ErrInvalidRange; Message is safe to show to API clients.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Kind }

// KindName is a short label for the rejection, suitable for metrics.
func (e *ValidationError) KindName() string {
	switch e.Kind {
	case ErrInvalidField:
		return "invalid_field"
	case ErrInvalidRange:
		return "invalid_range"
	default:
		return "unknown"
	}
}

func invalidField() error {
	return &ValidationError{Kind: ErrInvalidField, Message: msgInvalidField}
}

func invalidDates() error {
	return &ValidationError{Kind: ErrInvalidRange, Message: msgInvalidDates}
}

func invalidMillis() error {
	return &ValidationError{Kind: ErrInvalidRange, Message: msgInvalidMillisec}
}
