package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrSchemaValidation = errors.New("schema validation failed")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every constraint a record violates.
type ValidationError struct {
	Kind   Kind
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchemaValidation, e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}

// Messages returns the violations as "field: message" strings.
func (e *ValidationError) Messages() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Field + ": " + f.Message
	}
	return out
}

type checker struct {
	kind Kind
	errs []FieldError
}

func (c *checker) fail(field, format string, args ...any) {
	c.errs = append(c.errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Kind: c.kind, Fields: c.errs}
}

func (c *checker) id(value string) {
	if value == "" {
		c.fail("id", "is required")
		return
	}
	if !IsUUID(value) {
		c.fail("id", "must be a UUID")
	}
}

func (c *checker) length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if min > 0 && strings.TrimSpace(value) == "" {
		c.fail(field, "is required")
		return
	}
	if n < min {
		c.fail(field, "must be at least %d characters", min)
	}
	if max > 0 && n > max {
		c.fail(field, "must be at most %d characters", max)
	}
}

func (c *checker) between(field string, v, lo, hi float64) {
	if v < lo || v > hi {
		c.fail(field, "must be between %g and %g", lo, hi)
	}
}

func (c *checker) timestamp(field, value string) {
	if value == "" {
		return
	}
	if _, err := ParseTime(value); err != nil {
		c.fail(field, "must be an ISO 8601 timestamp")
	}
}

// tags checks a list of lowercase, unique, non-empty strings.
func (c *checker) tags(field string, values []string, max int) {
	if len(values) > max {
		c.fail(field, "must contain at most %d items", max)
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			c.fail(field, "must not contain empty values")
			continue
		}
		if v != strings.ToLower(v) {
			c.fail(field, "value %q must be lowercase", v)
		}
		if _, dup := seen[v]; dup {
			c.fail(field, "value %q is duplicated", v)
		}
		seen[v] = struct{}{}
	}
}

func (c *checker) quality(m *QualityMetrics) {
	if m == nil {
		return
	}
	c.between("quality_metrics.completeness", m.Completeness, 0, 100)
	c.between("quality_metrics.accuracy", m.Accuracy, 0, 100)
	c.between("quality_metrics.consistency", m.Consistency, 0, 100)
	c.between("quality_metrics.validity", m.Validity, 0, 100)
}

func (s *Story) Validate() error {
	c := &checker{kind: KindStory}
	c.id(s.ID)
	c.length("title", s.Title, 1, 500)
	c.length("content", s.Content, 10, 0)
	c.length("summary", s.Summary, 0, 1000)
	c.tags("themes", s.Themes, 10)
	if s.Metadata.WordCount < 0 {
		c.fail("metadata.word_count", "must not be negative")
	}
	if s.Metadata.ReadingTime < 0 {
		c.fail("metadata.reading_time", "must not be negative")
	}
	c.between("metadata.complexity_score", s.Metadata.ComplexityScore, 0, 100)
	c.between("metadata.sentiment_score", s.Metadata.SentimentScore, -1, 1)
	c.between("metadata.quality_score", s.Metadata.QualityScore, 0, 100)
	c.timestamp("created_at", s.CreatedAt)
	c.timestamp("updated_at", s.UpdatedAt)
	return c.err()
}

func (s *Storyteller) Validate() error {
	c := &checker{kind: KindStoryteller}
	c.id(s.ID)
	c.length("full_name", s.FullName, 1, 200)
	c.length("bio", s.Bio, 0, 2000)
	if len(s.KeyInsights) > 20 {
		c.fail("key_insights", "must contain at most 20 items")
	}
	for i, insight := range s.KeyInsights {
		if utf8.RuneCountInString(insight) <= 10 {
			c.fail(fmt.Sprintf("key_insights[%d]", i), "must be longer than 10 characters")
		}
	}
	c.tags("expertise_areas", s.ExpertiseAreas, 15)
	if s.Metadata.TotalStories < 0 {
		c.fail("metadata.total_stories", "must not be negative")
	}
	if s.Metadata.AvgStoryLength < 0 {
		c.fail("metadata.avg_story_length", "must not be negative")
	}
	c.between("metadata.engagement_score", s.Metadata.EngagementScore, 0, 100)
	c.between("metadata.expertise_diversity", s.Metadata.ExpertiseDiversity, 0, 100)
	c.quality(s.QualityMetrics)
	c.timestamp("created_at", s.CreatedAt)
	c.timestamp("updated_at", s.UpdatedAt)
	return c.err()
}

func (d *Document) Validate() error {
	c := &checker{kind: KindDocument}
	c.id(d.ID)
	if !d.SourceType.Valid() {
		c.fail("source_type", "must be one of story, storyteller, document, research")
	}
	c.length("content", d.Content, 1, 0)
	if d.ChunkIndex < 0 {
		c.fail("chunk_index", "must not be negative")
	}
	if d.TotalChunks < 1 {
		c.fail("total_chunks", "must be at least 1")
	} else if d.ChunkIndex >= d.TotalChunks {
		c.fail("chunk_index", "must be less than total_chunks")
	}
	c.quality(d.QualityMetrics)
	c.timestamp("normalized_at", d.NormalizedAt)
	return c.err()
}

// Conform checks rec against the target schema. Any record can be projected
// onto the document schema; other cross-kind targets are rejected.
func Conform(rec Record, target Kind) (Record, error) {
	if rec == nil {
		return nil, &ValidationError{Kind: target, Fields: []FieldError{{Field: "record", Message: "is empty"}}}
	}
	if rec.Kind() == target {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		return rec, nil
	}
	if target == KindDocument {
		doc := rec.AsDocument()
		if err := doc.Validate(); err != nil {
			return nil, err
		}
		return doc, nil
	}
	return nil, &ValidationError{Kind: target, Fields: []FieldError{{
		Field:   "kind",
		Message: fmt.Sprintf("a %s record cannot be conformed to %s", rec.Kind(), target),
	}}}
}

// New returns an empty record of the given kind.
func New(kind Kind) Record {
	switch kind {
	case KindStory:
		return &Story{}
	case KindStoryteller:
		return &Storyteller{}
	default:
		return &Document{}
	}
}

// DecodeMap decodes an arbitrary key/value record into the closed struct of
// kind, dropping unknown fields, and validates it. The decoded record is
// returned even when validation fails.
func DecodeMap(m map[string]any, kind Kind) (Record, error) {
	rec := New(kind)

	data, err := json.Marshal(m)
	if err != nil {
		return rec, &ValidationError{Kind: kind, Fields: []FieldError{{Field: "record", Message: err.Error()}}}
	}
	if err := json.Unmarshal(data, rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return rec, &ValidationError{Kind: kind, Fields: []FieldError{{
				Field:   typeErr.Field,
				Message: "must be of type " + typeErr.Type.String(),
			}}}
		}
		return rec, &ValidationError{Kind: kind, Fields: []FieldError{{Field: "record", Message: err.Error()}}}
	}

	return rec, rec.Validate()
}
