package cleaner

import (
	"github.com/act-placemat/normalizer/internal/quality"
	"github.com/act-placemat/normalizer/internal/textclean"
	"github.com/act-placemat/normalizer/internal/textstats"
	"github.com/act-placemat/normalizer/pkg/utils"
)

// dedupPrefixLength is the number of runes compared by non-conservative
// deduplication.
const dedupPrefixLength = 100

func cleanText(items []map[string]any, level Aggressiveness) []map[string]any {
	for _, item := range items {
		content, ok := item["content"].(string)
		if !ok {
			continue
		}
		content = textclean.CollapseWhitespace(content)
		switch level {
		case Moderate:
			content = textclean.SqueezeRuns(content, 5, 3)
		case Aggressive:
			// runs of 4+ go to 2 in place of the moderate 5+ to 3
			content = textclean.StripUnsafe(content)
			content = textclean.SqueezeRuns(content, 4, 2)
			content = textclean.CollapseWhitespace(content)
		}
		item["content"] = content
	}
	return items
}

// deduplicate keeps the first item for each key. Conservative runs key on the
// full content; other levels key on its first 100 runes. Items without
// string content key on their serialized form.
func deduplicate(items []map[string]any, level Aggressiveness) []map[string]any {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		key := dedupKey(item, level)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func dedupKey(item map[string]any, level Aggressiveness) string {
	content, ok := item["content"].(string)
	if !ok {
		if h, err := utils.HashValue(item); err == nil {
			return "record:" + h
		}
		return "record:unhashable"
	}
	if level != Conservative {
		content = textclean.Truncate(content, dedupPrefixLength)
	}
	return "content:" + utils.HashString(content)
}

func validate(items []map[string]any) []map[string]any {
	out := items[:0]
	for _, item := range items {
		if quality.ScoreMap(item, "").Passed {
			out = append(out, item)
		}
	}
	return out
}

// enhance fills missing metadata.word_count and metadata.reading_time.
// Existing values are kept.
func enhance(items []map[string]any) []map[string]any {
	for _, item := range items {
		content, _ := item["content"].(string)

		meta, ok := item["metadata"].(map[string]any)
		if !ok {
			if item["metadata"] != nil {
				continue
			}
			meta = map[string]any{}
			item["metadata"] = meta
		}
		if _, ok := meta["word_count"]; !ok {
			meta["word_count"] = textstats.CountWords(content)
		}
		if _, ok := meta["reading_time"]; !ok {
			meta["reading_time"] = textstats.ReadingTime(content)
		}
	}
	return items
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case []float64:
		return append([]float64(nil), x...)
	default:
		return v
	}
}
