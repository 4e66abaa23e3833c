package transform

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/textclean"
)

// Per-field limits for list normalization.
const (
	maxThemes      = 10
	maxInsights    = 20
	maxExpertise   = 15
	maxTags        = 20
	minTagLength   = 2
	minInsightSize = 11
)

// text returns the cleaned value of the first key holding a non-empty string.
func text(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = textclean.Clean(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// integer reads a non-negative whole number from a JSON number or numeric string.
func integer(v any) int {
	switch n := v.(type) {
	case float64:
		if n > 0 && !math.IsInf(n, 0) {
			return int(n)
		}
	case int:
		if n > 0 {
			return n
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && i > 0 {
			return i
		}
	}
	return 0
}

// stringList accepts a JSON array of strings or a comma-separated string.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(list, ",")
	}
	return nil
}

// normalizeList cleans every value, keeps those of at least minLen runes,
// optionally lowercases, drops duplicates after the first occurrence and
// truncates to max entries.
func normalizeList(values []string, minLen, max int, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = textclean.Clean(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" || utf8.RuneCountInString(v) < minLen {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}

// embedding keeps a vector only when every element is numeric.
func embedding(v any) []float64 {
	switch vec := v.(type) {
	case []float64:
		return vec
	case []any:
		if len(vec) == 0 {
			return nil
		}
		out := make([]float64, len(vec))
		for i, x := range vec {
			f, ok := x.(float64)
			if !ok {
				return nil
			}
			out[i] = f
		}
		return out
	}
	return nil
}

func recordID(m map[string]any) string {
	id, _ := m["id"].(string)
	return schema.EnsureID(strings.TrimSpace(id))
}

// timestamp normalizes an optional date field, keeping it empty when absent.
func timestamp(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil || v == "" {
		return ""
	}
	return schema.NormalizeTime(v)
}
