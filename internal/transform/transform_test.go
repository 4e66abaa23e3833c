package transform

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/act-placemat/normalizer/internal/schema"
)

const storyID = "9b2e4f60-1d3c-4a8b-8e7f-0a1b2c3d4e5f"

// single returns a checker expecting exactly one record of type T.
func single[T schema.Record](t *testing.T) func([]schema.Record, error) T {
	return func(recs []schema.Record, err error) T {
		t.Helper()
		require.NoError(t, err)
		require.Len(t, recs, 1)
		rec, ok := recs[0].(T)
		require.True(t, ok, "unexpected record type %T", recs[0])
		return rec
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()

	name, fn := r.Resolve(SourceStories)
	assert.Equal(t, SourceStories, name)
	assert.NotNil(t, fn)

	name, fn = r.Resolve("ftp:legacy")
	assert.Equal(t, SourceGeneric, name)
	assert.NotNil(t, fn)

	assert.Equal(t, []string{SourceStories, SourceStorytellers, SourcePages, SourceWeb, SourceFileText, SourceGeneric}, r.Names())
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("custom", func(raw any) ([]schema.Record, error) {
		called = true
		return nil, nil
	})

	_, fn := r.Resolve("custom")
	_, err := fn(nil)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestStory(t *testing.T) {
	story := single[*schema.Story](t)(Story(map[string]any{
		"id":          storyID,
		"title":       "  The   river  ",
		"body":        "We walked to the river. The water was clear and cold!",
		"summary":     strings.Repeat("s", 1200),
		"themes":      []any{"Land", "land", "x", "Water", 3.0, ""},
		"embedding":   []any{0.1, 0.2},
		"created_at":  "2024-01-01T00:00:00Z",
		"unknown_key": true,
	}))

	assert.Equal(t, storyID, story.ID)
	assert.Equal(t, "The river", story.Title)
	assert.Equal(t, "We walked to the river. The water was clear and cold!", story.Content)
	assert.Equal(t, 1000, utf8.RuneCountInString(story.Summary))
	assert.Equal(t, []string{"land", "water"}, story.Themes)
	assert.Equal(t, []float64{0.1, 0.2}, story.Embedding)
	assert.Equal(t, 11, story.Metadata.WordCount)
	assert.Equal(t, 1, story.Metadata.ReadingTime)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", story.CreatedAt)
	assert.Equal(t, story.CreatedAt, story.UpdatedAt)
	assert.Zero(t, story.Metadata.QualityScore)
}

func TestStory_Defaults(t *testing.T) {
	story := single[*schema.Story](t)(Story(map[string]any{
		"id":         "legacy-7",
		"themes":     "food, Family ,food",
		"embedding":  []any{"bad"},
		"created_at": "not a date",
	}))

	assert.True(t, schema.IsUUID(story.ID))
	assert.Equal(t, untitledStory, story.Title)
	assert.Empty(t, story.Content)
	assert.Equal(t, []string{"food", "family"}, story.Themes)
	assert.Nil(t, story.Embedding)
	_, err := schema.ParseTime(story.CreatedAt)
	assert.NoError(t, err)
}

func TestStory_ThemeLimit(t *testing.T) {
	themes := make([]any, 0, 15)
	for _, th := range strings.Fields("a1 a2 a3 a4 a5 a6 a7 a8 a9 a10 a11 a12 a13 a14 a15") {
		themes = append(themes, th)
	}
	story := single[*schema.Story](t)(Story(map[string]any{"themes": themes}))
	assert.Len(t, story.Themes, maxThemes)
}

func TestTypedTransformers_RejectNonObjects(t *testing.T) {
	for name, fn := range map[string]Func{
		SourceStories:      Story,
		SourceStorytellers: Storyteller,
		SourcePages:        Page,
		SourceWeb:          Web,
		SourceFileText:     FileText(0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn([]any{1.0, 2.0})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTransformation))

			var terr *Error
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, name, terr.Source)
		})
	}
}

func TestStoryteller(t *testing.T) {
	st := single[*schema.Storyteller](t)(Storyteller(map[string]any{
		"name":         "Aunty May",
		"bio":          "Elder.",
		"transcript":   "We  speak slowly.",
		"key_insights": []any{"short", "Patience is a form of respect", "Patience is a form of respect"},
		"expertise":    []any{"Health", "health", "Language", "Law"},
		"stories": []any{
			map[string]any{"content": "one two three four"},
			"five six",
		},
	}))

	assert.True(t, schema.IsUUID(st.ID))
	assert.Equal(t, "Aunty May", st.FullName)
	assert.Equal(t, "We speak slowly.", st.Transcript)
	assert.Equal(t, []string{"Patience is a form of respect"}, st.KeyInsights)
	assert.Equal(t, []string{"health", "language", "law"}, st.ExpertiseAreas)
	assert.Equal(t, 2, st.Metadata.TotalStories)
	assert.InDelta(t, 3.0, st.Metadata.AvgStoryLength, 1e-9)
	// 2 stories * 10 + 1 insight * 5 + transcript 20
	assert.InDelta(t, 45.0, st.Metadata.EngagementScore, 1e-9)
	assert.InDelta(t, 20.0, st.Metadata.ExpertiseDiversity, 1e-9)
}

func TestStoryteller_StoryCountAndCaps(t *testing.T) {
	st := single[*schema.Storyteller](t)(Storyteller(map[string]any{"story_count": 12.0}))
	assert.Equal(t, unknownStoryteller, st.FullName)
	assert.Equal(t, 12, st.Metadata.TotalStories)
	assert.InDelta(t, 100.0, st.Metadata.EngagementScore, 1e-9)
	assert.Zero(t, st.Metadata.AvgStoryLength)
}

func TestChunk_UnpunctuatedBlob(t *testing.T) {
	chunks := Chunk(strings.Repeat("abcdefghij", 300), 1000)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, 1000, utf8.RuneCountInString(c))
	}
}

func TestChunk_SentencesArePacked(t *testing.T) {
	sentence := "This sentence has exactly forty chars.. "
	chunks := Chunk(strings.Repeat(sentence, 60), 1000)

	require.GreaterOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 1000)
		assert.True(t, strings.HasSuffix(c, "."), c)
	}
}

func TestChunk_DropsTinyChunks(t *testing.T) {
	assert.Empty(t, Chunk("Hi. Ok.", 5))
	assert.Nil(t, Chunk("   ", 1000))
}

func TestFileText(t *testing.T) {
	blob := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 112))
	recs, err := FileText(1000)(map[string]any{
		"id":       "file-1",
		"filename": "notes.txt",
		"content":  blob,
		"metadata": map[string]any{"owner": "field team"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 4)

	ids := map[string]bool{}
	for i, rec := range recs {
		doc := rec.(*schema.Document)
		assert.Equal(t, i, doc.ChunkIndex)
		assert.Equal(t, len(recs), doc.TotalChunks)
		assert.Equal(t, "file-1", doc.SourceID)
		assert.Equal(t, schema.SourceDocument, doc.SourceType)
		assert.Equal(t, "notes.txt", doc.Metadata["filename"])
		assert.Equal(t, "field team", doc.Metadata["owner"])
		assert.Equal(t, utf8.RuneCountInString(doc.Content), doc.Metadata["chunk_characters"])
		assert.True(t, schema.IsUUID(doc.ID))
		require.NoError(t, doc.Validate())
		ids[doc.ID] = true
	}
	assert.Len(t, ids, 4)

	again, err := FileText(1000)(map[string]any{"id": "file-1", "content": blob})
	require.NoError(t, err)
	assert.Equal(t, recs[0].RecordID(), again[0].RecordID())
}

func TestFileText_SharedFreshSourceID(t *testing.T) {
	recs, err := FileText(100)(strings.Repeat("A full sentence. ", 20))
	require.NoError(t, err)
	require.Greater(t, len(recs), 1)

	first := recs[0].(*schema.Document).SourceID
	assert.NotEmpty(t, first)
	for _, rec := range recs {
		assert.Equal(t, first, rec.(*schema.Document).SourceID)
	}
}

func TestPage(t *testing.T) {
	doc := single[*schema.Document](t)(Page(map[string]any{
		"name":         "Community health report",
		"description":  "A short report on community health outcomes.",
		"url":          "https://example.org/report",
		"author":       "Research Unit",
		"published_at": "2023-06-01",
		"tags":         []any{"Health", "health", "Youth"},
	}))

	assert.Equal(t, schema.SourceResearch, doc.SourceType)
	assert.Equal(t, "https://example.org/report", doc.SourceID)
	assert.Equal(t, "Community health report", doc.Title)
	assert.Equal(t, "2023-06-01T00:00:00.000Z", doc.Metadata["published_at"])
	assert.Equal(t, []string{"health", "youth"}, doc.Metadata["tags"])
	assert.Equal(t, 7, doc.Metadata["word_count"])
	require.NoError(t, doc.Validate())
}

func TestWeb(t *testing.T) {
	html := `<html><head><title>Program page</title><script>var x = 1;</script></head>
<body><nav>Home | About</nav><p>Our program supports families.</p><p>Join us.</p></body></html>`

	doc := single[*schema.Document](t)(Web(map[string]any{
		"url":  "https://www.example.org/programs?id=3",
		"html": html,
	}))

	assert.Equal(t, "Program page", doc.Title)
	assert.Equal(t, "Our program supports families. Join us.", doc.Content)
	assert.Equal(t, "example.org", doc.Metadata["domain"])
	assert.NotEmpty(t, doc.Metadata["scraped_at"])
}

func TestWeb_PlainContent(t *testing.T) {
	doc := single[*schema.Document](t)(Web(map[string]any{"title": "Plain", "content": "Just text here."}))
	assert.Equal(t, "Plain", doc.Title)
	assert.Equal(t, "Just text here.", doc.Content)
	assert.Equal(t, "", doc.Metadata["domain"])
}

func TestGeneric(t *testing.T) {
	doc := single[*schema.Document](t)(Generic(map[string]any{"zeta": 1.0, "alpha": "value", "title": "Loose"}))

	assert.Equal(t, schema.SourceDocument, doc.SourceType)
	assert.Equal(t, `{"alpha":"value","title":"Loose","zeta":1}`, doc.Content)
	assert.Equal(t, []string{"alpha", "title", "zeta"}, doc.Metadata["original_keys"])
	assert.Equal(t, SourceGeneric, doc.Metadata["source"])
	assert.Equal(t, "Loose", doc.Title)
	assert.Equal(t, doc.ID, doc.SourceID)
}

func TestGeneric_NonObject(t *testing.T) {
	doc := single[*schema.Document](t)(Generic([]any{"a", 2.0}))
	assert.Equal(t, `["a",2]`, doc.Content)
	assert.NotContains(t, doc.Metadata, "original_keys")
}
