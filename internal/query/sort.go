package query

import "strings"

// SortField orders results by one field.
type SortField struct {
	Field      string
	Kind       Kind
	Descending bool
}

// CompileSort validates sort keys against schema. Accepted directions are
// 1, -1, "asc", "desc", "ascending" and "descending".
func CompileSort(keys []SortKey, schema Schema) ([]SortField, error) {
	fields := make([]SortField, 0, len(keys))
	for _, key := range keys {
		field, kind, err := schema.Resolve(key.Field)
		if err != nil {
			return nil, err
		}
		desc, err := direction(field, key.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, SortField{Field: field, Kind: kind, Descending: desc})
	}
	return fields, nil
}

func direction(field string, v any) (bool, error) {
	switch val := numeric(v).(type) {
	case float64:
		switch val {
		case 1:
			return false, nil
		case -1:
			return true, nil
		}
	case string:
		switch strings.ToLower(val) {
		case "asc", "ascending", "1":
			return false, nil
		case "desc", "descending", "-1":
			return true, nil
		}
	}
	return false, invalidf("invalid sort direction %s for %q", describe(v), field)
}
