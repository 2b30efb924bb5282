package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  time.Time
		valid bool
	}{
		{"date only string", "2030-01-01", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339 string", "2030-01-01T10:30:00Z", time.Date(2030, 1, 1, 10, 30, 0, 0, time.UTC), true},
		{"rfc3339 with offset", "2030-01-01T10:30:00+02:00", time.Date(2030, 1, 1, 8, 30, 0, 0, time.UTC), true},
		{"epoch millis number", float64(1893456000000), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"epoch millis string", "1893456000000", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"epoch zero", float64(0), time.Unix(0, 0).UTC(), true},
		{"json number", json.Number("1893456000000"), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"nil", nil, time.Time{}, false},
		{"empty string", "", time.Time{}, false},
		{"blank string", "   ", time.Time{}, false},
		{"garbage string", "not a date", time.Time{}, false},
		{"boolean", true, time.Time{}, false},
		{"out of range", float64(9e15), time.Time{}, false},
		{"past year 9999", float64(8e15), time.Time{}, false},
		{"past year 9999 as string", "8000000000000000", time.Time{}, false},
		{"last millisecond of 9999", float64(253402300799999), time.Date(9999, 12, 31, 23, 59, 59, 999e6, time.UTC), true},
		{"before year 0", float64(-62200000000000), time.Time{}, false},
		{"zero time string", "0001-01-01T00:00:00Z", time.Time{}, false},
		{"zero time millis", float64(-62135596800000), time.Time{}, false},
		{"zero time value", time.Time{}, time.Time{}, false},
		{"object", map[string]any{"a": 1}, time.Time{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTime(tc.input)
			assert.Equal(t, tc.valid, ok)
			if tc.valid {
				assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
			}
		})
	}
}

func TestParseCompleted(t *testing.T) {
	tests := []struct {
		input any
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"false", false},
		{"0", false},
		{"TRUE", false},
		{"yes", false},
		{float64(1), false},
		{nil, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseCompleted(tc.input), "input %#v", tc.input)
	}
}
