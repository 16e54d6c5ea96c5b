package backup

import (
	"fmt"
	"time"
)

// dict pulls known keys out of a decoded plist dictionary. Every taken key is removed,
// so whatever is left at the end are the keys the document model does not know about.
// The first failure sticks and turns all later lookups into no-ops.
type dict struct {
	values map[string]interface{}
	err    error
}

func newDict(values map[string]interface{}) *dict {
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &dict{values: copied}
}

func (d *dict) take(key string, required bool) (interface{}, bool) {
	if d.err != nil {
		return nil, false
	}
	v, ok := d.values[key]
	if !ok {
		if required {
			d.err = fmt.Errorf("missing key '%s'", key)
		}
		return nil, false
	}
	delete(d.values, key)
	return v, true
}

// field takes a required key and checks its value is a T. kind names the expected
// plist type for error messages.
func field[T any](d *dict, key string, kind string) T {
	var zero T
	v, ok := d.take(key, true)
	if !ok {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		d.err = fmt.Errorf("key '%s' should be %s but is %T", key, kind, v)
		return zero
	}
	return t
}

func (d *dict) str(key string) string {
	return field[string](d, key, "a string")
}

func (d *dict) optionalString(key string) *string {
	v, ok := d.take(key, false)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.err = fmt.Errorf("key '%s' should be a string but is %T", key, v)
		return nil
	}
	return &s
}

func (d *dict) boolean(key string) bool {
	return field[bool](d, key, "a boolean")
}

func (d *dict) date(key string) time.Time {
	return field[time.Time](d, key, "a date")
}

func (d *dict) data(key string) []byte {
	return field[[]byte](d, key, "data")
}

func (d *dict) dictionary(key string) map[string]interface{} {
	return field[map[string]interface{}](d, key, "a dictionary")
}

func (d *dict) array(key string) []interface{} {
	return field[[]interface{}](d, key, "an array")
}

// nested takes a required dictionary and hands it to decode.
func (d *dict) nested(key string, decode func(map[string]interface{}) error) {
	values := d.dictionary(key)
	if d.err != nil {
		return
	}
	if err := decode(values); err != nil {
		d.err = fmt.Errorf("in '%s': %w", key, err)
	}
}

// rest returns the keys nobody took.
func (d *dict) rest() map[string]interface{} {
	return d.values
}

// merge builds the dictionary to encode: the unknown keys plus the known ones on top.
func merge(extra map[string]interface{}, known map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(extra)+len(known))
	for k, v := range extra {
		result[k] = v
	}
	for k, v := range known {
		result[k] = v
	}
	return result
}

func orEmptyDict(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

func orEmptyArray(a []interface{}) []interface{} {
	if a == nil {
		return []interface{}{}
	}
	return a
}

func orEmptyData(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
