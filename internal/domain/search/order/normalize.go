package order

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize turns raw order_by input into a sanitized Spec, preserving the
// order of the input. Accepted shapes:
//
//	"created_at desc, id"                      comma-separated pairs
//	[]string{"created_at desc", "id"}          sequence of pair strings
//	[]any{[]any{"id", "desc"}, map[...]...}    sequence of pairs or single-entry maps
//	map[string]string{"id": "desc"}            mapping, applied in lexical key order
//
// Empty or unrecognized input yields Default(fields).
func Normalize(raw any, fields Fields) Spec {
	var spec Spec

	switch v := raw.(type) {
	case nil:
	case string:
		spec = fromString(v, fields)
	case []string:
		for _, s := range v {
			spec = append(spec, fromString(s, fields)...)
		}
	case [][]string:
		for _, pair := range v {
			spec = append(spec, fromPair(pair, fields))
		}
	case []map[string]string:
		for _, m := range v {
			spec = append(spec, fromStringMap(m, fields)...)
		}
	case []map[string]any:
		for _, m := range v {
			spec = append(spec, fromAnyMap(m, fields)...)
		}
	case []any:
		for _, el := range v {
			spec = append(spec, fromElement(el, fields)...)
		}
	case map[string]string:
		spec = fromStringMap(v, fields)
	case map[string]any:
		spec = fromAnyMap(v, fields)
	case Spec:
		for _, t := range v {
			spec = append(spec, Sanitize(t.Column, string(t.Direction), fields))
		}
	}

	if len(spec) == 0 {
		return Default(fields)
	}
	return spec
}

func fromElement(el any, fields Fields) Spec {
	switch e := el.(type) {
	case string:
		return fromString(e, fields)
	case []string:
		return Spec{fromPair(e, fields)}
	case []any:
		pair := make([]string, len(e))
		for i, p := range e {
			pair[i] = toString(p)
		}
		return Spec{fromPair(pair, fields)}
	case map[string]string:
		return fromStringMap(e, fields)
	case map[string]any:
		return fromAnyMap(e, fields)
	default:
		return Spec{Sanitize(toString(e), "", fields)}
	}
}

// fromString parses "field [dir], field [dir]".
func fromString(s string, fields Fields) Spec {
	var spec Spec
	for _, part := range strings.Split(s, ",") {
		fd := strings.Fields(part)
		if len(fd) == 0 {
			continue
		}
		dir := ""
		if len(fd) > 1 {
			dir = fd[1]
		}
		spec = append(spec, Sanitize(fd[0], dir, fields))
	}
	return spec
}

func fromPair(pair []string, fields Fields) Term {
	switch len(pair) {
	case 0:
		return Sanitize("", "", fields)
	case 1:
		return Sanitize(pair[0], "", fields)
	default:
		return Sanitize(pair[0], pair[1], fields)
	}
}

func fromStringMap(m map[string]string, fields Fields) Spec {
	spec := make(Spec, 0, len(m))
	for _, k := range sortedKeys(m) {
		spec = append(spec, Sanitize(k, m[k], fields))
	}
	return spec
}

func fromAnyMap(m map[string]any, fields Fields) Spec {
	spec := make(Spec, 0, len(m))
	for _, k := range sortedKeys(m) {
		spec = append(spec, Sanitize(k, toString(m[k]), fields))
	}
	return spec
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
