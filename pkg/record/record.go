// Package record defines the opaque row type rendered by the table widget
// and the key helpers used to identify rows independently of their position.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DefaultKeyField is the field used to identify records when none is configured.
const DefaultKeyField = "id"

var (
	// ErrMissingKey is returned when a record has no value for the key field.
	ErrMissingKey = errors.New("record has no key value")
	// ErrUnsupportedKey is returned when the key value is not a scalar.
	ErrUnsupportedKey = errors.New("record key must be a scalar")
	// ErrDuplicateKey is returned when two records in a list share a key.
	ErrDuplicateKey = errors.New("duplicate record key")
)

// Record maps field names to values. No schema is enforced.
type Record map[string]any

// Key is the stringified key-field value identifying a record within a list.
type Key string

// Get returns the value stored under field.
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// Field returns the display string for field, or "" when absent.
func (r Record) Field(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// KeyOf returns the key of rec under field.
func KeyOf(rec Record, field string) (Key, error) {
	if field == "" {
		field = DefaultKeyField
	}
	v, ok := rec[field]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: field %q", ErrMissingKey, field)
	}
	switch t := v.(type) {
	case string:
		return Key(t), nil
	case bool:
		return Key(strconv.FormatBool(t)), nil
	case int:
		return Key(strconv.Itoa(t)), nil
	case int64:
		return Key(strconv.FormatInt(t, 10)), nil
	case uint64:
		return Key(strconv.FormatUint(t, 10)), nil
	case float64:
		return Key(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case fmt.Stringer:
		return Key(t.String()), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only scalar kinds are valid keys
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return Key(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Key(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32:
		return Key(strconv.FormatFloat(rv.Float(), 'f', -1, 32)), nil
	}
	return "", fmt.Errorf("%w: field %q holds %T", ErrUnsupportedKey, field, v)
}

// KeyFunc returns a function extracting keys under field. Records whose key
// cannot be extracted map to the empty key.
func KeyFunc(field string) func(Record) Key {
	return func(r Record) Key {
		k, err := KeyOf(r, field)
		if err != nil {
			return ""
		}
		return k
	}
}

// Keys returns the keys of list in order. It fails on the first record
// without a usable key or on a duplicate key.
func Keys(list []Record, field string) ([]Key, error) {
	keys := make([]Key, 0, len(list))
	seen := make(map[Key]int, len(list))
	for i, rec := range list {
		k, err := KeyOf(rec, field)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if prev, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w %q at rows %d and %d", ErrDuplicateKey, k, prev, i)
		}
		seen[k] = i
		keys = append(keys, k)
	}
	return keys, nil
}

// IndexOf returns the position of key in list, or -1.
func IndexOf(list []Record, field string, key Key) int {
	keyOf := KeyFunc(field)
	for i, rec := range list {
		if keyOf(rec) == key {
			return i
		}
	}
	return -1
}

// Stringify returns a compact single-line representation for a field value.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return flatten(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() { //nolint:exhaustive // only complex types need JSON marshaling
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
		return fmt.Sprintf("%v", v)
	}
}

// flatten keeps table cells on one line.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	r := strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}
