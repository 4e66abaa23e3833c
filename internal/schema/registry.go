package schema

type FieldSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Constraints string `json:"constraints,omitempty"`
}

type Description struct {
	Name        Kind        `json:"name"`
	Description string      `json:"description"`
	Fields      []FieldSpec `json:"fields"`
}

var registry = []Description{
	{
		Name:        KindStory,
		Description: "A single story shared by a storyteller",
		Fields: []FieldSpec{
			{Name: "id", Type: "uuid", Required: true},
			{Name: "title", Type: "string", Required: true, Constraints: "1-500 characters"},
			{Name: "content", Type: "string", Required: true, Constraints: "at least 10 characters"},
			{Name: "summary", Type: "string", Constraints: "at most 1000 characters"},
			{Name: "themes", Type: "string[]", Constraints: "at most 10, lowercase, unique"},
			{Name: "metadata.word_count", Type: "integer"},
			{Name: "metadata.reading_time", Type: "integer", Constraints: "minutes"},
			{Name: "metadata.complexity_score", Type: "number", Constraints: "0-100"},
			{Name: "metadata.sentiment_score", Type: "number", Constraints: "-1 to 1"},
			{Name: "metadata.quality_score", Type: "number", Constraints: "0-100"},
			{Name: "embedding", Type: "number[]", Constraints: "1536 dimensions when present"},
			{Name: "created_at", Type: "timestamp"},
			{Name: "updated_at", Type: "timestamp"},
		},
	},
	{
		Name:        KindStoryteller,
		Description: "A person who shares stories and expertise",
		Fields: []FieldSpec{
			{Name: "id", Type: "uuid", Required: true},
			{Name: "full_name", Type: "string", Required: true, Constraints: "1-200 characters"},
			{Name: "bio", Type: "string", Constraints: "at most 2000 characters"},
			{Name: "transcript", Type: "string"},
			{Name: "key_insights", Type: "string[]", Constraints: "at most 20, each longer than 10 characters"},
			{Name: "expertise_areas", Type: "string[]", Constraints: "at most 15, lowercase, unique"},
			{Name: "metadata.total_stories", Type: "integer"},
			{Name: "metadata.avg_story_length", Type: "number", Constraints: "words"},
			{Name: "metadata.engagement_score", Type: "number", Constraints: "0-100"},
			{Name: "metadata.expertise_diversity", Type: "number", Constraints: "0-100"},
			{Name: "embedding", Type: "number[]", Constraints: "1536 dimensions when present"},
			{Name: "created_at", Type: "timestamp"},
			{Name: "updated_at", Type: "timestamp"},
		},
	},
	{
		Name:        KindDocument,
		Description: "A storage-ready text unit, possibly one chunk of a larger source",
		Fields: []FieldSpec{
			{Name: "id", Type: "uuid", Required: true},
			{Name: "source_type", Type: "enum", Required: true, Constraints: "story | storyteller | document | research"},
			{Name: "source_id", Type: "string"},
			{Name: "content", Type: "string", Required: true},
			{Name: "title", Type: "string"},
			{Name: "chunk_index", Type: "integer", Constraints: ">= 0"},
			{Name: "total_chunks", Type: "integer", Constraints: ">= 1"},
			{Name: "metadata", Type: "object"},
			{Name: "embedding", Type: "number[]", Constraints: "1536 dimensions when present"},
			{Name: "quality_metrics", Type: "object", Constraints: "completeness, accuracy, consistency, validity 0-100"},
			{Name: "normalized_at", Type: "timestamp"},
		},
	},
}

// Describe returns the static description of every canonical schema.
func Describe() []Description {
	out := make([]Description, len(registry))
	copy(out, registry)
	return out
}
