package options

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// DecodeJSON decodes a JSON payload strictly: unknown fields at any level,
// wrongly typed values and trailing data are rejected. An empty payload or
// a literal null means "no options" and yields a nil RawOptions.
func DecodeJSON(data []byte) (*RawOptions, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var raw RawOptions
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Err: describeJSONError(err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newValidationError("unexpected data after the options object")
	}
	if err := checkKeys(trimmed, reflect.TypeOf(raw), ""); err != nil {
		return nil, &ValidationError{Err: err}
	}
	return &raw, nil
}

// ParseJSON decodes and resolves a JSON payload.
func ParseJSON(data []byte) (*RenderSettings, error) {
	raw, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return Resolve(raw)
}

func describeJSONError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return fmt.Errorf("field %q: cannot use %s as %s", typeErr.Field, typeErr.Value, typeErr.Type)
		}
		return fmt.Errorf("options must be an object, got %s", typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("malformed JSON at offset %d: %w", syntaxErr.Offset, err)
	}
	// Unknown fields surface as plain errors: json: unknown field "x".
	return err
}

// checkKeys rejects object keys that are not spelled exactly like a json
// tag of t. encoding/json matches field names case-insensitively.
func checkKeys(data []byte, t reflect.Type, prefix string) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil
	}

	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			fields[name] = f.Type
		}
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ft, ok := fields[key]
		if !ok {
			return fmt.Errorf("json: unknown field %q", prefix+key)
		}
		if err := checkKeys(obj[key], ft, prefix+key+"."); err != nil {
			return err
		}
	}
	return nil
}
