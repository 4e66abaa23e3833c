package transform

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/textclean"
	"github.com/act-placemat/normalizer/internal/textstats"
)

// Page maps an external research page onto a research document.
func Page(raw any) ([]schema.Record, error) {
	m, err := object(SourcePages, raw)
	if err != nil {
		return nil, err
	}

	id := recordID(m)
	content := text(m, "content", "text", "body", "description")
	link := text(m, "url")

	doc := &schema.Document{
		ID:          id,
		SourceType:  schema.SourceResearch,
		SourceID:    firstNonEmpty(link, id),
		Content:     content,
		Title:       textclean.Truncate(text(m, "title", "name"), maxTitleLength),
		TotalChunks: 1,
		Metadata: map[string]any{
			"url":          link,
			"author":       text(m, "author"),
			"published_at": timestamp(m, "published_at"),
			"tags":         normalizeList(stringList(m["tags"]), minTagLength, maxTags, true),
			"word_count":   textstats.CountWords(content),
			"reading_time": textstats.ReadingTime(content),
		},
		Embedding:    embedding(m["embedding"]),
		NormalizedAt: schema.Now(),
	}
	return []schema.Record{doc}, nil
}

// Web maps a scraped web page onto a research document. Raw HTML is reduced
// to its readable text; plain content is used when no HTML is supplied.
func Web(raw any) ([]schema.Record, error) {
	m, err := object(SourceWeb, raw)
	if err != nil {
		return nil, err
	}

	id := recordID(m)
	link := text(m, "url")
	title := text(m, "title")

	var content string
	if html, ok := m["html"].(string); ok && strings.TrimSpace(html) != "" {
		var pageTitle string
		content, pageTitle = textclean.StripHTML(html)
		if title == "" {
			title = pageTitle
		}
	} else {
		content = text(m, "content", "text")
	}

	scraped := timestamp(m, "scraped_at")
	if scraped == "" {
		scraped = schema.Now()
	}

	doc := &schema.Document{
		ID:          id,
		SourceType:  schema.SourceResearch,
		SourceID:    firstNonEmpty(link, id),
		Content:     content,
		Title:       textclean.Truncate(title, maxTitleLength),
		TotalChunks: 1,
		Metadata: map[string]any{
			"url":        link,
			"domain":     domain(link),
			"word_count": textstats.CountWords(content),
			"scraped_at": scraped,
		},
		NormalizedAt: schema.Now(),
	}
	return []schema.Record{doc}, nil
}

// Generic serializes the whole raw value as the document content. It accepts
// any input and never fails.
func Generic(raw any) ([]schema.Record, error) {
	var content string
	if data, err := json.Marshal(raw); err == nil {
		content = string(data)
	} else {
		content = fmt.Sprint(raw)
	}
	content = textclean.Clean(content)

	id := schema.NewID()
	var title string
	meta := map[string]any{
		"source":     SourceGeneric,
		"word_count": textstats.CountWords(content),
	}

	if m, ok := raw.(map[string]any); ok {
		id = recordID(m)
		title = textclean.Truncate(text(m, "title", "name"), maxTitleLength)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		meta["original_keys"] = keys
	}

	doc := &schema.Document{
		ID:           id,
		SourceType:   schema.SourceDocument,
		SourceID:     id,
		Content:      content,
		Title:        title,
		TotalChunks:  1,
		Metadata:     meta,
		NormalizedAt: schema.Now(),
	}
	return []schema.Record{doc}, nil
}

func domain(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
