// Package payload reads loosely shaped JSON objects, such as gateway responses and webhook
// bodies, whose keys are spelled differently depending on who produced them.
package payload

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Lookup returns the first non-null value stored under one of keys. Keys are tried as exact
// matches in the given order first; if none matches, they are tried again in the same order
// ignoring case. When several stored keys differ only in case, the one that sorts first wins.
func Lookup(m map[string]any, keys ...string) (any, bool) {
	if len(m) == 0 {
		return nil, false
	}

	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}

	stored := slices.Sorted(maps.Keys(m))
	for _, key := range keys {
		for _, k := range stored {
			if v := m[k]; v != nil && strings.EqualFold(k, key) {
				return v, true
			}
		}
	}

	return nil, false
}

// String resolves keys with Lookup and renders scalar values as trimmed text.
// Objects and arrays are not considered strings.
func String(m map[string]any, keys ...string) string {
	v, ok := Lookup(m, keys...)
	if !ok {
		return ""
	}

	return strings.TrimSpace(toString(v))
}

// Decimal resolves keys with Lookup and parses the value as a decimal number.
func Decimal(m map[string]any, keys ...string) (decimal.Decimal, bool) {
	s := String(m, keys...)
	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}

// Object resolves keys with Lookup and returns the value when it is a JSON object.
func Object(m map[string]any, keys ...string) (map[string]any, bool) {
	v, ok := Lookup(m, keys...)
	if !ok {
		return nil, false
	}

	obj, ok := v.(map[string]any)
	return obj, ok
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
