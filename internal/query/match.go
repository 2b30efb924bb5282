package query

import (
	"time"
)

// Getter returns the value of a field of a document: string, bool,
// time.Time or []string depending on the field's kind.
type Getter func(field string) any

// Match reports whether the document read by get satisfies f.
func (f Filter) Match(get Getter) bool {
	for _, c := range f.Conds {
		if !c.match(get(c.Field)) {
			return false
		}
	}
	for _, sub := range f.And {
		if !sub.Match(get) {
			return false
		}
	}
	if len(f.Or) > 0 {
		matched := false
		for _, sub := range f.Or {
			if sub.Match(get) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (c Cond) match(actual any) bool {
	if list, ok := actual.([]string); ok {
		return c.matchList(list)
	}

	switch c.Op {
	case OpEq:
		return Compare(actual, c.Value) == 0
	case OpNe:
		return Compare(actual, c.Value) != 0
	case OpGt:
		return Compare(actual, c.Value) > 0
	case OpGte:
		return Compare(actual, c.Value) >= 0
	case OpLt:
		return Compare(actual, c.Value) < 0
	case OpLte:
		return Compare(actual, c.Value) <= 0
	case OpIn:
		return containsValue(c.Values, actual)
	case OpNin:
		return !containsValue(c.Values, actual)
	}
	return false
}

// matchList applies array semantics: equality means membership, $in means
// any overlap.
func (c Cond) matchList(list []string) bool {
	has := func(v any) bool {
		for _, item := range list {
			if Compare(item, v) == 0 {
				return true
			}
		}
		return false
	}

	switch c.Op {
	case OpEq:
		return has(c.Value)
	case OpNe:
		return !has(c.Value)
	case OpIn:
		for _, v := range c.Values {
			if has(v) {
				return true
			}
		}
		return false
	case OpNin:
		for _, v := range c.Values {
			if has(v) {
				return false
			}
		}
		return true
	}
	return false
}

func containsValue(values []any, actual any) bool {
	for _, v := range values {
		if Compare(actual, v) == 0 {
			return true
		}
	}
	return false
}

// Compare orders two operands of the same kind: -1, 0 or 1. Operands of
// different types compare unequal, ordered by type.
func Compare(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return typeRank(a) - typeRank(b)
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return typeRank(a) - typeRank(b)
		}
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return typeRank(a) - typeRank(b)
		}
		return av.Compare(bv)
	}
	return typeRank(a) - typeRank(b)
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 2
	case bool:
		return 3
	case time.Time:
		return 4
	}
	return 1
}
