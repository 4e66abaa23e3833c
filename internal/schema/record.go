// Package schema declares the canonical record shapes produced by the source
// transformers: story, storyteller and document.
package schema

import "strings"

type Kind string

const (
	KindStory       Kind = "story"
	KindStoryteller Kind = "storyteller"
	KindDocument    Kind = "document"
)

// Kinds lists the canonical schemas in registry order.
var Kinds = []Kind{KindStory, KindStoryteller, KindDocument}

// ParseKind resolves a schema name. Unknown or empty names resolve to document.
func ParseKind(name string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case KindStory, KindStoryteller, KindDocument:
		return k
	default:
		return KindDocument
	}
}

type SourceType string

const (
	SourceStory       SourceType = "story"
	SourceStoryteller SourceType = "storyteller"
	SourceDocument    SourceType = "document"
	SourceResearch    SourceType = "research"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceStory, SourceStoryteller, SourceDocument, SourceResearch:
		return true
	}
	return false
}

// QualityMetrics holds the four quality dimension scores, each in [0, 100].
type QualityMetrics struct {
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Consistency  float64 `json:"consistency"`
	Validity     float64 `json:"validity"`
}

// Record is implemented by *Story, *Storyteller and *Document.
type Record interface {
	Kind() Kind
	RecordID() string
	Validate() error
	// AttachQuality stores a quality verdict on the record.
	AttachQuality(metrics QualityMetrics, score float64)
	// AsDocument projects the record onto the document schema used for storage.
	AsDocument() *Document
}

type StoryMetadata struct {
	WordCount       int     `json:"word_count"`
	ReadingTime     int     `json:"reading_time"`
	ComplexityScore float64 `json:"complexity_score"`
	SentimentScore  float64 `json:"sentiment_score"`
	QualityScore    float64 `json:"quality_score"`
}

type Story struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Summary   string        `json:"summary"`
	Themes    []string      `json:"themes"`
	Metadata  StoryMetadata `json:"metadata"`
	Embedding []float64     `json:"embedding,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

func (s *Story) Kind() Kind       { return KindStory }
func (s *Story) RecordID() string { return s.ID }

func (s *Story) AttachQuality(_ QualityMetrics, score float64) {
	s.Metadata.QualityScore = score
}

func (s *Story) AsDocument() *Document {
	return &Document{
		ID:          s.ID,
		SourceType:  SourceStory,
		SourceID:    s.ID,
		Content:     s.Content,
		Title:       s.Title,
		ChunkIndex:  0,
		TotalChunks: 1,
		Metadata: map[string]any{
			"summary":          s.Summary,
			"themes":           s.Themes,
			"word_count":       s.Metadata.WordCount,
			"reading_time":     s.Metadata.ReadingTime,
			"complexity_score": s.Metadata.ComplexityScore,
			"sentiment_score":  s.Metadata.SentimentScore,
			"quality_score":    s.Metadata.QualityScore,
			"created_at":       s.CreatedAt,
			"updated_at":       s.UpdatedAt,
		},
		Embedding:    s.Embedding,
		NormalizedAt: s.UpdatedAt,
	}
}

type StorytellerMetadata struct {
	TotalStories       int     `json:"total_stories"`
	AvgStoryLength     float64 `json:"avg_story_length"`
	EngagementScore    float64 `json:"engagement_score"`
	ExpertiseDiversity float64 `json:"expertise_diversity"`
}

type Storyteller struct {
	ID             string              `json:"id"`
	FullName       string              `json:"full_name"`
	Bio            string              `json:"bio"`
	Transcript     string              `json:"transcript"`
	KeyInsights    []string            `json:"key_insights"`
	ExpertiseAreas []string            `json:"expertise_areas"`
	Metadata       StorytellerMetadata `json:"metadata"`
	Embedding      []float64           `json:"embedding,omitempty"`
	QualityMetrics *QualityMetrics     `json:"quality_metrics,omitempty"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
}

func (s *Storyteller) Kind() Kind       { return KindStoryteller }
func (s *Storyteller) RecordID() string { return s.ID }

func (s *Storyteller) AttachQuality(metrics QualityMetrics, _ float64) {
	m := metrics
	s.QualityMetrics = &m
}

// Text is the storyteller's free text: bio followed by transcript.
func (s *Storyteller) Text() string {
	switch {
	case s.Bio == "":
		return s.Transcript
	case s.Transcript == "":
		return s.Bio
	default:
		return s.Bio + " " + s.Transcript
	}
}

func (s *Storyteller) AsDocument() *Document {
	return &Document{
		ID:          s.ID,
		SourceType:  SourceStoryteller,
		SourceID:    s.ID,
		Content:     s.Text(),
		Title:       s.FullName,
		ChunkIndex:  0,
		TotalChunks: 1,
		Metadata: map[string]any{
			"full_name":           s.FullName,
			"key_insights":        s.KeyInsights,
			"expertise_areas":     s.ExpertiseAreas,
			"total_stories":       s.Metadata.TotalStories,
			"avg_story_length":    s.Metadata.AvgStoryLength,
			"engagement_score":    s.Metadata.EngagementScore,
			"expertise_diversity": s.Metadata.ExpertiseDiversity,
			"created_at":          s.CreatedAt,
			"updated_at":          s.UpdatedAt,
		},
		Embedding:      s.Embedding,
		QualityMetrics: s.QualityMetrics,
		NormalizedAt:   s.UpdatedAt,
	}
}

type Document struct {
	ID             string          `json:"id"`
	SourceType     SourceType      `json:"source_type"`
	SourceID       string          `json:"source_id"`
	Content        string          `json:"content"`
	Title          string          `json:"title"`
	ChunkIndex     int             `json:"chunk_index"`
	TotalChunks    int             `json:"total_chunks"`
	Metadata       map[string]any  `json:"metadata"`
	Embedding      []float64       `json:"embedding,omitempty"`
	QualityMetrics *QualityMetrics `json:"quality_metrics,omitempty"`
	NormalizedAt   string          `json:"normalized_at"`
}

func (d *Document) Kind() Kind       { return KindDocument }
func (d *Document) RecordID() string { return d.ID }

func (d *Document) AttachQuality(metrics QualityMetrics, _ float64) {
	m := metrics
	d.QualityMetrics = &m
}

func (d *Document) AsDocument() *Document { return d }
