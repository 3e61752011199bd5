package config

import (
	"strings"

	"github.com/spf13/cast"
)

var truthy = map[string]bool{"1": true, "true": true, "yes": true, "y": true, "on": true}

// asString returns v as a string, or def when v is absent or not a scalar.
func asString(v any, def string) string {
	if v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// asPositiveInt returns v as an int, or def when v is absent, malformed or <= 0.
func asPositiveInt(v any, def int) int {
	if v == nil {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// asBool interprets v as a boolean. Strings are true only for the usual
// affirmative spellings; other scalars follow their truth value.
func asBool(v any, def bool) bool {
	switch b := v.(type) {
	case nil:
		return def
	case bool:
		return b
	case string:
		return truthy[strings.ToLower(strings.TrimSpace(b))]
	default:
		out, err := cast.ToBoolE(v)
		if err != nil {
			return def
		}
		return out
	}
}

// asChoice returns v lowercased when it is one of allowed, otherwise def.
func asChoice(v any, def string, allowed ...string) string {
	s := strings.ToLower(strings.TrimSpace(asString(v, def)))
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return def
}
