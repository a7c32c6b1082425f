package spapi

import (
	"strconv"
)

// Record is one entity as returned by the service (user, material, media...).
// Fields are passed through untouched.
type Record map[string]any

// String returns the field as text, empty when missing
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Code returns the entity code used by every endpoint to address it
func (r Record) Code() string {
	return r.String("code")
}

// Name returns the entity name
func (r Record) Name() string {
	return r.String("name")
}

// Bool returns the field as a boolean, false when missing or not a boolean
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Record returns a nested object
func (r Record) Record(key string) (Record, bool) {
	m, ok := r[key].(map[string]any)
	return Record(m), ok
}

func recordField(op string, resp Record, key string) (Record, error) {
	nested, ok := resp.Record(key)
	if !ok {
		return nil, newError(op, ErrInvalidResponse, "missing %q object in response", key)
	}
	return nested, nil
}

func recordList(op string, resp Record, key string) ([]Record, error) {
	raw, ok := resp[key]
	if !ok {
		return nil, newError(op, ErrInvalidResponse, "missing %q list in response", key)
	}
	items, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return []Record{}, nil
		}
		return nil, newError(op, ErrInvalidResponse, "%q is not a list", key)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, newError(op, ErrInvalidResponse, "%q item %d is not an object", key, i)
		}
		records = append(records, Record(m))
	}
	return records, nil
}

func statusField(op string, resp Record) (bool, error) {
	status, ok := resp["status"].(bool)
	if !ok {
		return false, newError(op, ErrInvalidResponse, "missing boolean \"status\" in response")
	}
	return status, nil
}
