package daterange

import (
	"slices"
	"strings"
)

// Field selects the single sensor attribute a query targets.
type Field string

const (
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldWindSpeed   Field = "windSpeed"
)

// Fields lists every selectable field in display order.
var Fields = []Field{FieldTemperature, FieldHumidity, FieldWindSpeed}

func (f Field) Valid() bool { return slices.Contains(Fields, f) }

func (f Field) String() string { return string(f) }

// ParseField accepts exactly one of the names in Fields; matching is
// case-sensitive.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !f.Valid() {
		return "", invalidField()
	}
	return f, nil
}

func fieldNames() string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
