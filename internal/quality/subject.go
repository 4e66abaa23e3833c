package quality

import (
	"fmt"
	"strings"

	"github.com/act-placemat/normalizer/internal/schema"
)

// Subject is the view of a record the scorer works on. It can be built from
// a canonical record or from an untyped map.
type Subject struct {
	Kind    schema.Kind
	ID      string
	Content string
	// Required holds the value of each required field of Kind; empty means missing.
	Required map[string]string
	// WordCount is the stored metadata word count, nil when absent.
	WordCount *int

	HasEmbedding bool
	// EmbeddingDims is the vector length, or -1 when an element is not numeric.
	EmbeddingDims int

	CreatedAt string
	UpdatedAt string
}

var requiredFields = map[schema.Kind][]string{
	schema.KindStory:       {"title", "content"},
	schema.KindStoryteller: {"full_name"},
	schema.KindDocument:    {"content", "source_type", "source_id"},
}

// RequiredFields returns the fields that count towards completeness for kind.
func RequiredFields(kind schema.Kind) []string {
	return requiredFields[kind]
}

// Classify picks the schema a raw map is scored against. A known hint wins;
// otherwise full_name means storyteller, title means story and anything else
// is a document.
func Classify(m map[string]any, hint string) schema.Kind {
	switch k := schema.Kind(strings.ToLower(strings.TrimSpace(hint))); k {
	case schema.KindStory, schema.KindStoryteller, schema.KindDocument:
		return k
	}
	if _, ok := m["full_name"]; ok {
		return schema.KindStoryteller
	}
	if _, ok := m["title"]; ok {
		return schema.KindStory
	}
	return schema.KindDocument
}

func FromRecord(rec schema.Record) Subject {
	switch r := rec.(type) {
	case *schema.Story:
		wc := r.Metadata.WordCount
		s := Subject{
			Kind:      schema.KindStory,
			ID:        r.ID,
			Content:   r.Content,
			Required:  map[string]string{"title": r.Title, "content": r.Content},
			WordCount: &wc,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		s.setEmbedding(r.Embedding)
		return s
	case *schema.Storyteller:
		s := Subject{
			Kind:      schema.KindStoryteller,
			ID:        r.ID,
			Content:   r.Text(),
			Required:  map[string]string{"full_name": r.FullName},
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		s.setEmbedding(r.Embedding)
		return s
	case *schema.Document:
		s := Subject{
			Kind:    schema.KindDocument,
			ID:      r.ID,
			Content: r.Content,
			Required: map[string]string{
				"content":     r.Content,
				"source_type": string(r.SourceType),
				"source_id":   r.SourceID,
			},
			WordCount: number(r.Metadata["word_count"]),
			CreatedAt: stringValue(r.Metadata["created_at"]),
			UpdatedAt: stringValue(r.Metadata["updated_at"]),
		}
		s.setEmbedding(r.Embedding)
		return s
	}
	return Subject{Kind: schema.KindDocument, Required: map[string]string{}}
}

// FromMap builds a subject from a raw key/value record. hint names the
// schema to score against and may be empty.
func FromMap(m map[string]any, hint string) Subject {
	kind := Classify(m, hint)
	s := Subject{
		Kind:      kind,
		ID:        stringValue(m["id"]),
		Required:  make(map[string]string, len(requiredFields[kind])),
		CreatedAt: stringValue(m["created_at"]),
		UpdatedAt: stringValue(m["updated_at"]),
	}

	if kind == schema.KindStoryteller {
		bio, transcript := stringValue(m["bio"]), stringValue(m["transcript"])
		s.Content = strings.TrimSpace(bio + " " + transcript)
	} else {
		s.Content = stringValue(m["content"])
	}

	for _, f := range requiredFields[kind] {
		s.Required[f] = presence(m[f])
	}

	if meta, ok := m["metadata"].(map[string]any); ok {
		s.WordCount = number(meta["word_count"])
	}

	if v, ok := m["embedding"]; ok && v != nil {
		s.HasEmbedding = true
		s.EmbeddingDims = dims(v)
	}
	return s
}

func (s *Subject) setEmbedding(v []float64) {
	if v == nil {
		return
	}
	s.HasEmbedding = true
	s.EmbeddingDims = len(v)
}

func dims(v any) int {
	switch vec := v.(type) {
	case []float64:
		return len(vec)
	case []any:
		for _, x := range vec {
			if _, ok := x.(float64); !ok {
				return -1
			}
		}
		return len(vec)
	}
	return -1
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// presence renders a field for the completeness check. Blank strings and
// nil are missing; any other value is present.
func presence(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return fmt.Sprint(x)
	}
}

func number(v any) *int {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		n = int(x)
	default:
		return nil
	}
	return &n
}
