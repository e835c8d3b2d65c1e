package http

import (
	"encoding/json"
	"io"
	"net/http"
	"unicode"
	"unicode/utf8"
)

// decodeBody reads and decodes a JSON request body into dst.
//
// Two client generations disagree on field casing: older ones send
// PascalCase keys ("Email", "MasterPasswordHash"), newer ones camelCase.
// The body is normalized exactly once here, by lower-casing the first rune
// of every object key recursively, so everything past this boundary works
// with the canonical camelCase shapes and needs no per-field fallbacks.
func decodeBody(r *http.Request, dst any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	var decoded any
	if err = json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	normalized, err := json.Marshal(lowerKeys(decoded))
	if err != nil {
		return err
	}

	return json.Unmarshal(normalized, dst)
}

// lowerKeys rewrites every object key in a decoded JSON value so its first
// rune is lower case, descending into nested objects and arrays.
func lowerKeys(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[lowerFirst(key)] = lowerKeys(item)
		}
		return out
	case []any:
		for n, item := range value {
			value[n] = lowerKeys(item)
		}
		return value
	default:
		return v
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
