package query

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Listing defaults.
const (
	// DefaultTaskLimit caps task listings when the client sends no limit.
	DefaultTaskLimit int64 = 100

	// NoLimit leaves a listing unrestricted.
	NoLimit int64 = 0
)

// SortKey is one entry of a sort object, in the order the client sent it.
type SortKey struct {
	Field string
	Value any
}

// Params holds the raw listing parameters after lenient parsing.
type Params struct {
	Where  map[string]any
	Sort   []SortKey
	Select map[string]any
	Skip   int64
	Limit  int64
	Count  bool
}

// Parse reads the listing parameters from values. defaultLimit is used when
// limit is absent or unparseable.
func Parse(values url.Values, defaultLimit int64) Params {
	return Params{
		Where:  ParseObject(values.Get("where")),
		Sort:   ParseSort(values.Get("sort")),
		Select: ParseObject(values.Get("select")),
		Skip:   parseNonNegative(values.Get("skip"), 0),
		Limit:  parseNonNegative(values.Get("limit"), defaultLimit),
		Count:  values.Get("count") == "true",
	}
}

// ParseObject decodes raw as a JSON object. Anything else, including an
// empty string, yields an empty object.
func ParseObject(raw string) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}

// ParseSort decodes raw as a JSON object while keeping key order, which
// decides sort precedence. Anything else yields no sort keys.
func ParseSort(raw string) []SortKey {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var keys []SortKey
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		field, ok := tok.(string)
		if !ok {
			return nil
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		keys = append(keys, SortKey{Field: field, Value: value})
	}

	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil
	}
	if _, err := dec.Token(); err != io.EOF {
		// trailing data after the object
		return nil
	}
	return keys
}

func parseNonNegative(raw string, def int64) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}
