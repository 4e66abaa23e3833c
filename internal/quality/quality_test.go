package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/textstats"
)

const (
	validID = "5d6e7f80-91a2-4b3c-8d4e-5f60718293a4"

	gardenStory = `Every spring the families of the valley gather beside the old river to plant seeds together. ` +
		`Grandmothers explain which plants grow best in the red soil near the water. ` +
		`Children carry buckets, laugh loudly, and chase the dogs between the rows of beans. ` +
		`Later the elders share stories about droughts, floods, and the long walk from the coast decades ago. ` +
		`Young parents listen carefully because these memories shape how the community plans each season. ` +
		`One uncle describes building the first school with timber cut from nearby hills. ` +
		`A teacher records his words so students can study local history in their own language. ` +
		`The afternoon ends with a shared meal of damper, fish, and sweet bush tomatoes. ` +
		`Musicians bring guitars and clapsticks while neighbours from distant towns arrive with gifts. ` +
		`Nobody hurries home, since the evening sky turns golden over the quiet paddocks. ` +
		`Over many years these gatherings have strengthened friendships, healed old arguments, and encouraged young people to stay connected. ` +
		`Visitors often say the garden feels like a library of living knowledge. ` +
		`Each harvest, volunteers weigh the produce, count every pumpkin, and deliver boxes to households who need extra support. ` +
		`The project proves that patience, respect, and cooperation can transform a dusty paddock into a thriving place of learning.`
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
		hint string
		want schema.Kind
	}{
		{"hint wins", map[string]any{"full_name": "x"}, "document", schema.KindDocument},
		{"hint is case insensitive", map[string]any{}, " Story ", schema.KindStory},
		{"full_name means storyteller", map[string]any{"full_name": "x", "title": "y"}, "", schema.KindStoryteller},
		{"title means story", map[string]any{"title": ""}, "", schema.KindStory},
		{"default document", map[string]any{"content": "x"}, "bogus", schema.KindDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.m, tt.hint))
		})
	}
}

func TestScore_WellFormedStoryPasses(t *testing.T) {
	require.GreaterOrEqual(t, textstats.CountWords(gardenStory), 200)

	story := &schema.Story{
		ID:        validID,
		Title:     "Sample title",
		Content:   gardenStory,
		Metadata:  schema.StoryMetadata{WordCount: textstats.CountWords(gardenStory)},
		CreatedAt: "2024-05-01T09:00:00.000Z",
		UpdatedAt: "2024-05-01T09:30:00.000Z",
	}

	r := ScoreRecord(story)
	assert.True(t, r.Passed)
	assert.GreaterOrEqual(t, r.Score, 70.0)
	assert.Equal(t, 100.0, r.Metrics.Completeness)
	assert.Equal(t, 100.0, r.Metrics.Accuracy)
	assert.Equal(t, 100.0, r.Metrics.Consistency)
	assert.Equal(t, 100.0, r.Metrics.Validity)
	assert.Empty(t, r.Issues)
}

func TestScore_EmptyTitleAndTinyContentFails(t *testing.T) {
	r := ScoreMap(map[string]any{"title": "", "content": "x"}, "story")

	assert.False(t, r.Passed)
	assert.Less(t, r.Score, 70.0)
	assert.Equal(t, 50.0, r.Metrics.Completeness)
	// short content and no sentence longer than five characters
	assert.Equal(t, 45.0, r.Metrics.Accuracy)
	assert.Equal(t, 100.0, r.Metrics.Consistency)
	// missing id
	assert.Equal(t, 80.0, r.Metrics.Validity)
	assert.InDelta(t, 68.75, r.Score, 1e-9)
	assert.Equal(t, []string{DimensionCompleteness, DimensionAccuracy}, r.Issues)
}

func TestCompleteness(t *testing.T) {
	assert.Equal(t, 100.0, Completeness(FromMap(map[string]any{"full_name": "Aunty May"}, "")))
	assert.Equal(t, 0.0, Completeness(FromMap(map[string]any{"full_name": "  "}, "")))

	doc := FromMap(map[string]any{"content": "text", "source_type": "research"}, "")
	assert.InDelta(t, 200.0/3, Completeness(doc), 1e-9)

	numeric := FromMap(map[string]any{"content": "text", "source_type": "research", "source_id": 42.0}, "")
	assert.Equal(t, 100.0, Completeness(numeric))
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"clean prose", "The river was clear and cold this morning.", 100},
		{"low diversity", "go go go go go go go go go go.", 80},
		{"no long sentence", "Yes. No. Maybe. Sure. Fine. Okay.", 75},
		{"special characters", "#### $$$$ %%%% &&&& hello there friend.", 85},
		{"empty", "", 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accuracy(Subject{Content: tt.content}))
		})
	}
}

func TestConsistency(t *testing.T) {
	wc := func(n int) *int { return &n }
	content := "one two three four five six seven eight nine ten."

	assert.Equal(t, 100.0, Consistency(Subject{Content: content, WordCount: wc(10)}))
	assert.Equal(t, 100.0, Consistency(Subject{Content: content, WordCount: wc(11)}))
	assert.Equal(t, 80.0, Consistency(Subject{Content: content, WordCount: wc(12)}))
	assert.Equal(t, 80.0, Consistency(Subject{Content: "", WordCount: wc(3)}))
	assert.Equal(t, 100.0, Consistency(Subject{Content: "", WordCount: wc(0)}))

	assert.Equal(t, 75.0, Consistency(Subject{HasEmbedding: true, EmbeddingDims: 3}))
	assert.Equal(t, 100.0, Consistency(Subject{HasEmbedding: true, EmbeddingDims: EmbeddingDimensions}))

	reversed := Subject{CreatedAt: "2024-02-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z"}
	assert.Equal(t, 85.0, Consistency(reversed))

	all := Subject{Content: "", WordCount: wc(9), HasEmbedding: true, EmbeddingDims: -1,
		CreatedAt: "2024-02-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z"}
	assert.Equal(t, 40.0, Consistency(all))
}

func TestValidity(t *testing.T) {
	assert.Equal(t, 100.0, Validity(Subject{ID: validID, Content: "fine"}))
	assert.Equal(t, 80.0, Validity(Subject{ID: "abc", Content: "fine"}))
	assert.Equal(t, 70.0, Validity(Subject{ID: validID, CreatedAt: "soon", UpdatedAt: "later"}))
	assert.Equal(t, 80.0, Validity(Subject{ID: validID, Content: "nul\x00byte"}))
	assert.Equal(t, 80.0, Validity(Subject{ID: validID, Content: "bad \uFFFD char"}))
	assert.Equal(t, 55.0, Validity(Subject{ID: validID, Content: "broken \xff utf8"}))

	worst := Subject{ID: "", CreatedAt: "x", UpdatedAt: "y", Content: "\xff\x00"}
	assert.Equal(t, 5.0, Validity(worst))
}

func TestScore_DimensionsStayInRange(t *testing.T) {
	inputs := []map[string]any{
		{},
		{"content": strings.Repeat("!", 500), "embedding": []any{"x"}, "created_at": "bad", "updated_at": "worse"},
		{"full_name": "", "bio": "\x00\xff", "id": 12.0},
		{"title": "t", "content": gardenStory, "metadata": map[string]any{"word_count": 1.0}},
	}
	for _, in := range inputs {
		r := ScoreMap(in, "")
		for _, v := range []float64{r.Metrics.Completeness, r.Metrics.Accuracy, r.Metrics.Consistency, r.Metrics.Validity, r.Score} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
		assert.Equal(t, r.Score >= PassThreshold, r.Passed)
	}
}

func TestFromMap_Embedding(t *testing.T) {
	vec := make([]any, EmbeddingDimensions)
	for i := range vec {
		vec[i] = 0.5
	}
	s := FromMap(map[string]any{"embedding": vec}, "")
	assert.True(t, s.HasEmbedding)
	assert.Equal(t, EmbeddingDimensions, s.EmbeddingDims)

	vec[10] = "oops"
	assert.Equal(t, -1, FromMap(map[string]any{"embedding": vec}, "").EmbeddingDims)
	assert.False(t, FromMap(map[string]any{"embedding": nil}, "").HasEmbedding)
}

func TestFromRecord_Storyteller(t *testing.T) {
	s := FromRecord(&schema.Storyteller{ID: validID, FullName: "Aunty May", Bio: "Elder.", Transcript: "We speak."})
	assert.Equal(t, schema.KindStoryteller, s.Kind)
	assert.Equal(t, "Elder. We speak.", s.Content)
	assert.Nil(t, s.WordCount)
	assert.Equal(t, 100.0, Completeness(s))
}

func TestFromRecord_Document(t *testing.T) {
	s := FromRecord(&schema.Document{
		ID:         validID,
		SourceType: schema.SourceResearch,
		SourceID:   "https://example.org",
		Content:    "Short research note.",
		Metadata:   map[string]any{"word_count": 3, "created_at": "2024-01-01"},
	})
	require.NotNil(t, s.WordCount)
	assert.Equal(t, 3, *s.WordCount)
	assert.Equal(t, "2024-01-01", s.CreatedAt)
	assert.Equal(t, 100.0, Completeness(s))
}

func TestGrade(t *testing.T) {
	for score, want := range map[float64]string{100: "A", 90: "A", 89.9: "B", 80: "B", 75: "C", 60: "D", 59.99: "F", 0: "F"} {
		assert.Equal(t, want, Grade(score), "score %v", score)
	}
}

func TestRecommendations(t *testing.T) {
	assert.Empty(t, Recommendations(schema.QualityMetrics{Completeness: 100, Accuracy: 100, Consistency: 100, Validity: 100}, 100))

	recs := Recommendations(schema.QualityMetrics{Completeness: 79, Accuracy: 74, Consistency: 79, Validity: 10}, 60)
	require.Len(t, recs, 4)
	assert.Contains(t, recs[0], "Completeness")
	assert.Contains(t, recs[1], "Accuracy")
	assert.Contains(t, recs[2], "Consistency")
	assert.Contains(t, recs[3], "Overall")

	assert.Len(t, Recommendations(schema.QualityMetrics{Completeness: 80, Accuracy: 75, Consistency: 80}, 70), 0)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]Report{
		{Passed: true, Score: 90, Metrics: schema.QualityMetrics{Completeness: 100, Accuracy: 80, Consistency: 100, Validity: 80}},
		{Passed: false, Score: 50, Metrics: schema.QualityMetrics{Completeness: 50, Accuracy: 40, Consistency: 60, Validity: 50}},
	})
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 1, s.Passed)
	assert.InDelta(t, 50.0, s.PassRate, 1e-9)
	assert.InDelta(t, 70.0, s.AverageScore, 1e-9)
	assert.InDelta(t, 75.0, s.Metrics.Completeness, 1e-9)
	assert.InDelta(t, 60.0, s.Metrics.Accuracy, 1e-9)
	assert.InDelta(t, 80.0, s.Metrics.Consistency, 1e-9)
	assert.InDelta(t, 65.0, s.Metrics.Validity, 1e-9)
}

func TestCheck(t *testing.T) {
	v := Check(map[string]any{
		"id":           validID,
		"source_type":  "document",
		"source_id":    "upload-1",
		"content":      gardenStory,
		"total_chunks": 1,
	}, schema.KindDocument)
	assert.True(t, v.Valid)
	assert.Equal(t, validID, v.ID)
	assert.Equal(t, 100.0, v.QualityScore)
	assert.Empty(t, v.Issues)

	v = Check(map[string]any{"title": "", "content": "x"}, schema.KindStory)
	assert.False(t, v.Valid)
	assert.InDelta(t, 68.75, v.QualityScore, 1e-9)
	require.GreaterOrEqual(t, len(v.Issues), 3)
	assert.Equal(t, []string{"completeness", "accuracy"}, v.Issues[len(v.Issues)-2:])
}
