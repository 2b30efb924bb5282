package query

import (
	"encoding/json"
	"fmt"
)

// Projection selects which fields of a document are returned.
type Projection struct {
	// Fields lists the named fields, excluding IDField.
	Fields map[string]bool
	// Include is true when Fields lists the fields to keep and false when it
	// lists the fields to drop.
	Include bool
	// HideID drops IDField from the output.
	HideID bool
}

// IsEmpty reports whether p returns documents unchanged.
func (p Projection) IsEmpty() bool {
	return len(p.Fields) == 0 && !p.HideID
}

// CompileProjection validates a select object against schema. Values of
// 1/true keep a field and 0/false drop it. IDField is kept unless dropped
// explicitly, and may be dropped in either mode; mixing keep and drop for
// other fields is invalid.
func CompileProjection(sel map[string]any, schema Schema) (Projection, error) {
	p := Projection{Fields: map[string]bool{}}
	mode := 0 // 1 include, -1 exclude

	for key, raw := range sel {
		field, _, err := schema.Resolve(key)
		if err != nil {
			return Projection{}, err
		}
		keep, err := selectFlag(field, raw)
		if err != nil {
			return Projection{}, err
		}
		if field == IDField {
			p.HideID = !keep
			continue
		}

		want := -1
		if keep {
			want = 1
		}
		if mode != 0 && mode != want {
			return Projection{}, invalidf("select cannot mix inclusion and exclusion")
		}
		mode = want
		p.Fields[field] = true
	}

	p.Include = mode == 1
	return p, nil
}

func selectFlag(field string, v any) (bool, error) {
	switch val := numeric(v).(type) {
	case bool:
		return val, nil
	case float64:
		return val != 0, nil
	case string:
		switch val {
		case "1", "true":
			return true, nil
		case "0", "false":
			return false, nil
		}
	}
	return false, invalidf("invalid select value %s for %q", describe(v), field)
}

// Apply returns v with the projection applied. v must marshal to a JSON
// object. When p is empty v is returned as is.
func (p Projection) Apply(v any) (any, error) {
	if p.IsEmpty() {
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document for projection: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document for projection: %w", err)
	}

	out := make(map[string]any, len(doc))
	for k, val := range doc {
		if k == IDField {
			if !p.HideID {
				out[k] = val
			}
			continue
		}
		listed := p.Fields[k]
		if (p.Include && listed) || (!p.Include && !listed) {
			out[k] = val
		}
	}
	return out, nil
}
