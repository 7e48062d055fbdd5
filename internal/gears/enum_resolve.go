package gears

import (
	"regexp"
	"strings"
)

var nonTokenChars = regexp.MustCompile(`[^a-z0-9가-힣]`)

// normalizeToken lowercases and keeps only latin letters, digits and hangul.
func normalizeToken(value string) string {
	return nonTokenChars.ReplaceAllString(strings.ToLower(value), "")
}

// ResolveEnumValue maps a loosely typed value onto one of order's keys. Integers
// index into order; strings match a key exactly, then by normalized key, then by
// normalized label.
func ResolveEnumValue(value any, order []string, labels map[string]string) (string, bool) {
	switch v := value.(type) {
	case int:
		return indexInto(order, v)
	case int64:
		return indexInto(order, int(v))
	case float64:
		if v != float64(int(v)) {
			return "", false
		}
		return indexInto(order, int(v))
	case string:
		return resolveString(v, order, labels)
	case interface{ String() string }:
		return resolveString(v.String(), order, labels)
	}
	return "", false
}

func indexInto(order []string, i int) (string, bool) {
	if i < 0 || i >= len(order) {
		return "", false
	}
	return order[i], true
}

func resolveString(value string, order []string, labels map[string]string) (string, bool) {
	if value == "" {
		return "", false
	}
	for _, key := range order {
		if key == value {
			return key, true
		}
	}

	normalized := normalizeToken(value)
	if normalized == "" {
		return "", false
	}
	for _, key := range order {
		if normalizeToken(key) == normalized {
			return key, true
		}
	}
	for _, key := range order {
		if label, ok := labels[key]; ok && normalizeToken(label) == normalized {
			return key, true
		}
	}
	return "", false
}
