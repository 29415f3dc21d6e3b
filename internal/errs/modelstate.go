package errs

import (
	"bytes"
	"encoding/json"
)

// ModelState is an ordered multi-map from field name to error messages.
// The "" key holds model-level (unkeyed) messages.
//
// Keys keep the order of their first AddError, messages keep insertion
// order per key. The zero value is ready to use. It is not safe for
// concurrent writers.
type ModelState struct {
	keys   []string
	errors map[string][]string
}

// NewModelState creates an empty ModelState.
func NewModelState() *ModelState {
	return &ModelState{errors: make(map[string][]string)}
}

// AddError appends message under field.
func (m *ModelState) AddError(field, message string) {
	if m.errors == nil {
		m.errors = make(map[string][]string)
	}

	if _, ok := m.errors[field]; !ok {
		m.keys = append(m.keys, field)
	}
	m.errors[field] = append(m.errors[field], message)
}

// Keys returns the field names in first-seen order.
func (m *ModelState) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Errors returns the messages recorded under field.
func (m *ModelState) Errors(field string) []string {
	return append([]string(nil), m.errors[field]...)
}

// Has reports whether field has at least one message.
func (m *ModelState) Has(field string) bool {
	return len(m.errors[field]) > 0
}

// Len is the total number of messages across all keys.
func (m *ModelState) Len() int {
	n := 0
	for _, messages := range m.errors {
		n += len(messages)
	}
	return n
}

// IsValid reports whether no message has been recorded.
func (m *ModelState) IsValid() bool {
	return len(m.keys) == 0
}

// FieldErrors lists every message as a FieldError, grouped by key in key order.
func (m *ModelState) FieldErrors() []FieldError {
	fieldErrors := make([]FieldError, 0, m.Len())

	for _, key := range m.keys {
		for _, message := range m.errors[key] {
			fieldErrors = append(fieldErrors, FieldError{
				Field: key,
				Error: message,
			})
		}
	}

	return fieldErrors
}

// MarshalJSON writes an object keyed by field name in key order:
//
//	{"email":["email is required"],"":["email is required"]}
func (m *ModelState) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.errors[key])
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
