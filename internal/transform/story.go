package transform

import (
	"math"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/textclean"
	"github.com/act-placemat/normalizer/internal/textstats"
)

const (
	untitledStory        = "Untitled Story"
	unknownStoryteller   = "Unknown Storyteller"
	maxTitleLength       = 500
	maxSummaryLength     = 1000
	maxFullNameLength    = 200
	maxBioLength         = 2000
	engagementPerStory   = 10
	engagementPerInsight = 5
	engagementTranscript = 20
)

// Story maps a db:stories row onto the story schema.
func Story(raw any) ([]schema.Record, error) {
	m, err := object(SourceStories, raw)
	if err != nil {
		return nil, err
	}

	title := textclean.Truncate(text(m, "title"), maxTitleLength)
	if title == "" {
		title = untitledStory
	}
	content := text(m, "content", "story_content", "body", "text")

	created, updated := lifecycle(m)
	story := &schema.Story{
		ID:      recordID(m),
		Title:   title,
		Content: content,
		Summary: textclean.Truncate(text(m, "summary"), maxSummaryLength),
		Themes:  normalizeList(stringList(m["themes"]), minTagLength, maxThemes, true),
		Metadata: schema.StoryMetadata{
			WordCount:       textstats.CountWords(content),
			ReadingTime:     textstats.ReadingTime(content),
			ComplexityScore: textstats.ComplexityScore(content),
			SentimentScore:  textstats.SentimentScore(content),
		},
		Embedding: embedding(m["embedding"]),
		CreatedAt: created,
		UpdatedAt: updated,
	}
	return []schema.Record{story}, nil
}

// Storyteller maps a db:storytellers row onto the storyteller schema.
func Storyteller(raw any) ([]schema.Record, error) {
	m, err := object(SourceStorytellers, raw)
	if err != nil {
		return nil, err
	}

	name := textclean.Truncate(text(m, "full_name", "name"), maxFullNameLength)
	if name == "" {
		name = unknownStoryteller
	}

	insights := normalizeList(stringList(m["key_insights"]), minInsightSize, maxInsights, false)
	expertise := m["expertise_areas"]
	if expertise == nil {
		expertise = m["expertise"]
	}
	areas := normalizeList(stringList(expertise), minTagLength, maxExpertise, true)
	transcript := text(m, "transcript")

	lengths := storyLengths(m["stories"])
	total := len(lengths)
	if total == 0 {
		total = integer(m["story_count"])
	}

	created, updated := lifecycle(m)
	st := &schema.Storyteller{
		ID:             recordID(m),
		FullName:       name,
		Bio:            textclean.Truncate(text(m, "bio"), maxBioLength),
		Transcript:     transcript,
		KeyInsights:    insights,
		ExpertiseAreas: areas,
		Metadata: schema.StorytellerMetadata{
			TotalStories:       total,
			AvgStoryLength:     mean(lengths),
			EngagementScore:    engagement(total, len(insights), transcript != ""),
			ExpertiseDiversity: math.Min(100, float64(len(areas))/maxExpertise*100),
		},
		Embedding: embedding(m["embedding"]),
		CreatedAt: created,
		UpdatedAt: updated,
	}
	return []schema.Record{st}, nil
}

// lifecycle returns normalized created/updated timestamps. A missing
// updated_at defaults to created_at.
func lifecycle(m map[string]any) (string, string) {
	created := schema.NormalizeTime(m["created_at"])
	if v, ok := m["updated_at"]; ok && v != nil && v != "" {
		return created, schema.NormalizeTime(v)
	}
	return created, created
}

// storyLengths returns the word count of every story attached to a
// storyteller. Stories may be objects or bare strings.
func storyLengths(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case string:
			out = append(out, textstats.CountWords(s))
		case map[string]any:
			out = append(out, textstats.CountWords(text(s, "content", "story_content", "body", "text")))
		}
	}
	return out
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func engagement(stories, insights int, hasTranscript bool) float64 {
	score := stories*engagementPerStory + insights*engagementPerInsight
	if hasTranscript {
		score += engagementTranscript
	}
	return math.Min(100, float64(score))
}
