package providers

import (
	"fmt"
	"strconv"
	"strings"
)

// Upstream payloads are decoded into map[string]any and coerced field by
// field; types and key spellings vary across dataset revisions, so a value
// of the wrong type reads as absent rather than failing the row.

// firstString returns the first non-empty string value among the given
// keys, trimmed. Numeric values are rendered to their textual form.
func firstString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringVal(row[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringVal(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSpace(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// floatVal coerces a JSON value into a float64, accepting numbers and
// numeric strings.
func floatVal(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// intVal coerces a JSON value into an int, truncating fractional numbers.
func intVal(v any) (int, bool) {
	f, ok := floatVal(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
