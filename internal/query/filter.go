package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Op is a comparison operator.
type Op string

// Supported comparison operators.
const (
	OpEq  Op = "$eq"
	OpNe  Op = "$ne"
	OpGt  Op = "$gt"
	OpGte Op = "$gte"
	OpLt  Op = "$lt"
	OpLte Op = "$lte"
	OpIn  Op = "$in"
	OpNin Op = "$nin"
)

// Cond compares one field with a value. For OpIn and OpNin the operands are
// in Values; otherwise in Value. Operands are typed by Kind: string for
// KindID, KindString and KindStringList, bool for KindBool, time.Time for
// KindTime.
type Cond struct {
	Field  string
	Kind   Kind
	Op     Op
	Value  any
	Values []any
}

// Filter is a conjunction of conditions, nested conjunctions and
// disjunctions. The zero Filter matches everything.
type Filter struct {
	Conds []Cond
	And   []Filter
	Or    []Filter
}

// IsEmpty reports whether f matches everything.
func (f Filter) IsEmpty() bool {
	return len(f.Conds) == 0 && len(f.And) == 0 && len(f.Or) == 0
}

// CompileFilter validates a where object against schema.
func CompileFilter(where map[string]any, schema Schema) (Filter, error) {
	var f Filter

	// map order is random; sort so generated queries are stable
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := where[key]
		switch key {
		case "$and", "$or":
			subs, err := compileFilterList(key, raw, schema)
			if err != nil {
				return Filter{}, err
			}
			if key == "$and" {
				f.And = append(f.And, subs...)
			} else {
				f.Or = append(f.Or, subs...)
			}
			continue
		}
		if strings.HasPrefix(key, "$") {
			return Filter{}, invalidf("unsupported operator %q", key)
		}

		field, kind, err := schema.Resolve(key)
		if err != nil {
			return Filter{}, err
		}
		conds, err := compileField(field, kind, raw)
		if err != nil {
			return Filter{}, err
		}
		f.Conds = append(f.Conds, conds...)
	}

	return f, nil
}

func compileFilterList(op string, raw any, schema Schema) ([]Filter, error) {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil, invalidf("%s requires a non-empty array", op)
	}
	subs := make([]Filter, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, invalidf("%s entries must be objects", op)
		}
		sub, err := CompileFilter(obj, schema)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func compileField(field string, kind Kind, raw any) ([]Cond, error) {
	ops, ok := raw.(map[string]any)
	if !ok || !isOperatorObject(ops) {
		v, err := coerce(field, kind, raw)
		if err != nil {
			return nil, err
		}
		return []Cond{{Field: field, Kind: kind, Op: OpEq, Value: v}}, nil
	}

	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)

	conds := make([]Cond, 0, len(ops))
	for _, name := range names {
		op := Op(name)
		cond := Cond{Field: field, Kind: kind, Op: op}
		switch op {
		case OpEq, OpNe:
			v, err := coerce(field, kind, ops[name])
			if err != nil {
				return nil, err
			}
			cond.Value = v
		case OpGt, OpGte, OpLt, OpLte:
			if kind == KindStringList || kind == KindBool {
				return nil, invalidf("operator %s is not supported on %q", op, field)
			}
			v, err := coerce(field, kind, ops[name])
			if err != nil {
				return nil, err
			}
			cond.Value = v
		case OpIn, OpNin:
			items, ok := ops[name].([]any)
			if !ok {
				return nil, invalidf("operator %s on %q requires an array", op, field)
			}
			cond.Values = make([]any, 0, len(items))
			for _, item := range items {
				v, err := coerce(field, kind, item)
				if err != nil {
					return nil, err
				}
				cond.Values = append(cond.Values, v)
			}
		default:
			return nil, invalidf("unsupported operator %q on %q", name, field)
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// isOperatorObject reports whether every key of obj is an operator.
func isOperatorObject(obj map[string]any) bool {
	if len(obj) == 0 {
		return false
	}
	for k := range obj {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

// coerce converts a JSON value to the operand type of kind.
func coerce(field string, kind Kind, raw any) (any, error) {
	raw = numeric(raw)
	switch kind {
	case KindID, KindString, KindStringList:
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case float64:
			if v == 0 || v == 1 {
				return v == 1, nil
			}
		case string:
			switch v {
			case "true", "1":
				return true, nil
			case "false", "0":
				return false, nil
			}
		}
	case KindTime:
		if t, ok := domain.ParseTime(raw); ok {
			return t, nil
		}
	}
	return nil, invalidf("invalid value %s for %q", describe(raw), field)
}

// numeric widens Go integer and float kinds and json.Number to float64, the
// type encoding/json decodes numbers to. Other values are returned as is.
func numeric(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%v", v)
}
