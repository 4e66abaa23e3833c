package transform

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/textclean"
	"github.com/act-placemat/normalizer/internal/textstats"
)

// minChunkLength is the rune count at or below which a chunk is discarded.
const minChunkLength = 10

// sentencePattern matches a sentence together with its terminal punctuation.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*|[.!?]+`)

// FileText returns the file:text transformer, which splits long content into
// document chunks of at most maxChunkSize runes.
func FileText(maxChunkSize int) Func {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	return func(raw any) ([]schema.Record, error) {
		var m map[string]any
		switch v := raw.(type) {
		case string:
			m = map[string]any{"content": v}
		case map[string]any:
			m = v
		default:
			return nil, &Error{Source: SourceFileText, Err: fmt.Errorf("expected text or an object, got %T", raw)}
		}

		content := text(m, "content", "text")
		filename := text(m, "filename", "title", "name")

		sourceID, _ := m["id"].(string)
		if sourceID = strings.TrimSpace(sourceID); sourceID == "" {
			sourceID = schema.NewID()
		}

		chunks := Chunk(content, maxChunkSize)
		extra, _ := m["metadata"].(map[string]any)
		now := schema.Now()

		out := make([]schema.Record, len(chunks))
		for i, chunk := range chunks {
			meta := make(map[string]any, len(extra)+3)
			for k, v := range extra {
				meta[k] = v
			}
			meta["filename"] = filename
			meta["word_count"] = textstats.CountWords(chunk)
			meta["chunk_characters"] = utf8.RuneCountInString(chunk)

			out[i] = &schema.Document{
				ID:           schema.DeriveID(sourceID, i),
				SourceType:   schema.SourceDocument,
				SourceID:     sourceID,
				Content:      chunk,
				Title:        filename,
				ChunkIndex:   i,
				TotalChunks:  len(chunks),
				Metadata:     meta,
				NormalizedAt: now,
			}
		}
		return out, nil
	}
}

// Chunk packs the sentences of content into chunks of at most max runes.
// Sentences longer than max are split on word boundaries and words longer
// than max are cut. Chunks of minChunkLength runes or fewer are dropped.
func Chunk(content string, max int) []string {
	content = textclean.CollapseWhitespace(content)
	if content == "" {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size > minChunkLength {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		size = 0
	}
	add := func(piece string) {
		n := utf8.RuneCountInString(piece)
		if size > 0 && size+1+n > max {
			flush()
		}
		if size > 0 {
			current.WriteByte(' ')
			size++
		}
		current.WriteString(piece)
		size += n
	}

	for _, sentence := range sentencePattern.FindAllString(content, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if utf8.RuneCountInString(sentence) <= max {
			add(sentence)
			continue
		}
		for _, piece := range splitLong(sentence, max) {
			add(piece)
		}
	}
	flush()
	return chunks
}

// splitLong breaks an oversized sentence into pieces of at most max runes.
func splitLong(sentence string, max int) []string {
	var (
		pieces  []string
		current []string
		size    int
	)
	for _, word := range strings.Fields(sentence) {
		runes := []rune(word)
		for len(runes) > max {
			if size > 0 {
				pieces = append(pieces, strings.Join(current, " "))
				current, size = nil, 0
			}
			pieces = append(pieces, string(runes[:max]))
			runes = runes[max:]
		}
		if len(runes) == 0 {
			continue
		}
		n := len(runes)
		if size > 0 && size+1+n > max {
			pieces = append(pieces, strings.Join(current, " "))
			current, size = nil, 0
		}
		if size > 0 {
			size++
		}
		current = append(current, string(runes))
		size += n
	}
	if size > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}
	return pieces
}
