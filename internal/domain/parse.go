package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// maxEpochMillis bounds the instants a numeric deadline may describe
// (100,000,000 days either side of the epoch).
const maxEpochMillis = 8.64e15

// ParseTime interprets a loosely typed client value as an instant.
//
// Numbers, and strings that parse as numbers, are milliseconds since the Unix
// epoch. Any other string is parsed as a date; strings without a zone are
// read as UTC. The boolean result is false when v is absent or empty, or when
// it does not describe an instant between years 1 and 9999.
func ParseTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return checkInstant(val)
	case float64:
		return fromEpochMillis(val)
	case int:
		return fromEpochMillis(float64(val))
	case int64:
		return fromEpochMillis(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpochMillis(f)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpochMillis(f)
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return checkInstant(t)
	default:
		return time.Time{}, false
	}
}

func fromEpochMillis(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxEpochMillis {
		return time.Time{}, false
	}
	return checkInstant(time.UnixMilli(int64(f)))
}

// checkInstant rejects the zero time and instants JSON cannot encode.
func checkInstant(t time.Time) (time.Time, bool) {
	t = t.UTC()
	if t.IsZero() || t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

// ParseCompleted interprets a loosely typed completion flag. Only boolean
// true and the strings "true" and "1" mean completed; everything else,
// including absence, means not completed.
func ParseCompleted(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "1"
	default:
		return false
	}
}
