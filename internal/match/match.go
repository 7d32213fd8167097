// Package match implements the recursive polymorphic predicate (C4) used by
// the Search Executor: default (substring anywhere), key (key-name
// existence), and value (leaf equality) modes over a decoded JSON value.
package match

import (
	"strconv"
	"strings"
)

// Mode selects which of the three traversal rules applies at each leaf.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeKey     Mode = "key"
	ModeValue   Mode = "value"
)

// ParseMode maps the queryType header value to a Mode. An empty string is
// the default mode.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeKey:
		return ModeKey
	case ModeValue:
		return ModeValue
	default:
		return ModeDefault
	}
}

// Match reports whether query matches somewhere inside value under mode. An
// empty query always matches (match-all), per spec.
func Match(value any, query string, mode Mode) bool {
	if query == "" {
		return true
	}
	return match(value, query, mode)
}

func match(value any, query string, mode Mode) bool {
	switch v := value.(type) {
	case map[string]any:
		for k, vv := range v {
			if mode == ModeKey && k == query {
				return true
			}
			if match(vv, query, mode) {
				return true
			}
		}
		return false
	case []any:
		for _, vv := range v {
			if match(vv, query, mode) {
				return true
			}
		}
		return false
	default:
		if mode == ModeKey {
			// Keys only exist on objects; a bare scalar never satisfies key mode.
			return false
		}
		return matchLeaf(v, query, mode)
	}
}

func matchLeaf(v any, query string, mode Mode) bool {
	s, ok := leafString(v)
	if !ok {
		return false
	}
	switch mode {
	case ModeValue:
		return s == query
	default:
		return strings.Contains(s, query)
	}
}

// leafString renders a JSON scalar leaf to its textual form: strings as-is,
// numbers/booleans via their canonical string representation. null never
// matches (it has no textual form to compare against).
func leafString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case nil:
		return "", false
	default:
		return "", false
	}
}
