package schema

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the ISO 8601 layout used for every canonical timestamp.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Now is the current time in canonical form. Tests replace it.
var Now = func() string {
	return FormatTime(time.Now())
}

func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// NormalizeTime parses value and returns it in canonical form, or the current
// time when value is absent or unparseable.
func NormalizeTime(value any) string {
	switch v := value.(type) {
	case string:
		if t, err := ParseTime(v); err == nil {
			return FormatTime(t)
		}
	case float64:
		// epoch milliseconds
		if v > 0 {
			return FormatTime(time.UnixMilli(int64(v)))
		}
	case time.Time:
		return FormatTime(v)
	}
	return Now()
}
