package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxFormMemory bounds the memory used to parse multipart bodies.
const maxFormMemory = 1 << 20

// Global validator instance for reuse
var validate = validator.New()

// DecodeBody decodes a JSON or form-encoded request body into v. An empty
// body decodes as an empty object.
//
// Form fields are converted to a JSON object first: a field sent once
// becomes a string, a field sent more than once or named with a "[]" suffix
// becomes an array of strings.
func DecodeBody(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return decodeForm(r, mediaType, v)
	default:
		return DecodeJSON(r, v)
	}
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeForm(r *http.Request, mediaType string, v any) error {
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}

	fields := make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		name, isList := strings.CutSuffix(key, "[]")
		if isList || len(values) > 1 {
			items, _ := fields[name].([]any)
			for _, value := range values {
				items = append(items, value)
			}
			fields[name] = items
			continue
		}
		fields[name] = values[0]
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}
	return json.Unmarshal(raw, v)
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v any) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}

// StringList is a list of strings decoded leniently: array entries are
// converted to strings, a lone non-empty string is a one-element list and
// anything else is an empty list.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case []any:
		out := make(StringList, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		*l = out
	case string:
		if val == "" {
			*l = StringList{}
		} else {
			*l = StringList{val}
		}
	default:
		*l = StringList{}
	}
	return nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	default:
		return fmt.Sprint(val)
	}
}
