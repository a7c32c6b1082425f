package spapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Params holds the named parameters of an add or edit call.
//
// Values may be strings, booleans, any integer or float kind, slices or
// arrays of those (sent as repeated fields), maps or json.RawMessage (sent
// as JSON text).
type Params map[string]any

// allowList is the set of parameter names a call accepts
type allowList map[string]struct{}

func newAllowList(keys ...string) allowList {
	a := make(allowList, len(keys))
	for _, k := range keys {
		a[k] = struct{}{}
	}
	return a
}

// with returns a copy extended with keys
func (a allowList) with(keys ...string) allowList {
	out := make(allowList, len(a)+len(keys))
	for k := range a {
		out[k] = struct{}{}
	}
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}

// keys returns the accepted names in sorted order
func (a allowList) keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// checkParams rejects every key missing from allowed, logging each one
func (c *Client) checkParams(op string, allowed allowList, params Params) error {
	var invalid []string
	for key := range params {
		if _, ok := allowed[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	slices.Sort(invalid)
	for _, key := range invalid {
		c.logger.Error().Str("op", op).Str("parameter", key).
			Msgf("Invalid parameter %s, not supported for %s", key, op)
	}
	return newError(op, ErrUnsupportedParameter, "cancel call for %s: unsupported parameters: %s",
		op, strings.Join(invalid, ", "))
}

// clone copies params so conversions never touch the caller's map
func (p Params) clone() Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// joinList moves a list value from key to textKey as a comma separated string
func (p Params) joinList(key, textKey string) error {
	value, ok := p[key]
	if !ok {
		return nil
	}
	items, err := stringList(value)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", key, err)
	}
	p[textKey] = strings.Join(items, ",")
	delete(p, key)
	return nil
}

func stringList(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	}
	items, ok, err := listValues(value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}
	return items, nil
}

// listValues renders every element of a slice or array. ok is false when
// value is not a list.
func listValues(value any) (items []string, ok bool, err error) {
	if v, isStrings := value.([]string); isStrings {
		return v, true, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false, nil
	}
	items = make([]string, 0, rv.Len())
	for i := range rv.Len() {
		s, err := scalarValue(rv.Index(i).Interface())
		if err != nil {
			return nil, true, err
		}
		items = append(items, s)
	}
	return items, true, nil
}

// form encodes params as request fields
func (p Params) form(token string) (url.Values, error) {
	form := url.Values{}
	for key, value := range p {
		switch v := value.(type) {
		case nil:
			continue
		case map[string]any, json.RawMessage:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", key, err)
			}
			form.Set(key, string(raw))
		default:
			items, isList, err := listValues(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", key, err)
			}
			if isList {
				for _, item := range items {
					form.Add(key, item)
				}
				continue
			}
			s, err := scalarValue(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", key, err)
			}
			form.Set(key, s)
		}
	}
	form.Set("token", token)
	return form, nil
}

// scalarValue renders one value the way the service's form parser expects
func scalarValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	// named and sized numeric kinds
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return scalarValue(rv.Bool())
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}
