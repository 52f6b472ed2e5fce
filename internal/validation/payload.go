// Package validation turns raw JSON request bodies into typed, checked inputs.
package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

// Payload is a decoded JSON object keyed by field name.
type Payload map[string]json.RawMessage

// Parse decodes body into a Payload. Anything but a JSON object is rejected.
func Parse(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Request body must be a JSON object")
	}
	var p Payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid JSON body")
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// FromMap builds a Payload from Go values, as if they had arrived in a request body.
func FromMap(values map[string]interface{}) (Payload, error) {
	p := make(Payload, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		p[key] = raw
	}
	return p, nil
}

// Without returns a copy of p minus keys.
func (p Payload) Without(keys ...string) Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Has reports whether key was supplied, even as null.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Empty reports whether key is absent or carries an empty value: null, "",
// false, 0 or "0".
func (p Payload) Empty(key string) bool {
	raw, ok := p[key]
	if !ok {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == "" || val == "0"
	case bool:
		return !val
	case float64:
		return val == 0
	case []interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// Required fails on the first field, in declaration order, that is empty.
func Required(p Payload, fields ...string) error {
	for _, field := range fields {
		if p.Empty(field) {
			return appErrors.Missing(field)
		}
	}
	return nil
}

// String returns the trimmed string value of key, or "" when it is not a string.
func (p Payload) String(key string) string {
	raw, ok := p[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
