package query

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when listing parameters cannot be applied to a
// collection.
var ErrInvalid = errors.New("invalid query")

// Kind describes how values of a field are typed and compared.
type Kind int

const (
	// KindID is the store-assigned identity field.
	KindID Kind = iota
	// KindString is a plain string field, including references stored as strings.
	KindString
	// KindBool is a boolean field.
	KindBool
	// KindTime is an instant.
	KindTime
	// KindStringList is an ordered list of strings. Equality tests membership.
	KindStringList
)

// IDField is the name of the identity field in every collection.
const IDField = "_id"

// Schema maps the client-visible field names of a collection to their kinds.
type Schema map[string]Kind

// Resolve returns the canonical name and kind of field. "id" is accepted as
// an alias of IDField.
func (s Schema) Resolve(field string) (string, Kind, error) {
	if field == "id" {
		field = IDField
	}
	kind, ok := s[field]
	if !ok {
		return "", 0, invalidf("unknown field %q", field)
	}
	return field, kind, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
