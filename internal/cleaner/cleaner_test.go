package cleaner

import (
	"context"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingContent = "The elders met by the river at dawn. They spoke about the drought and the old songs."

func run(t *testing.T, items []map[string]any, opts Options) *Result {
	t.Helper()
	res, err := New().Clean(context.Background(), items, opts)
	require.NoError(t, err)
	return res
}

func contents(items []map[string]any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i], _ = item["content"].(string)
	}
	return out
}

func TestClean_ConservativeTextCleaningAndDedup(t *testing.T) {
	items := []map[string]any{{"content": "Hello   world"}, {"content": "Hello world"}}
	res := run(t, items, Options{
		Operations:     []string{"text_cleaning", "deduplication"},
		Aggressiveness: "conservative",
	})

	require.Len(t, res.Items, 1)
	assert.Equal(t, "Hello world", res.Items[0]["content"])
	assert.Equal(t, "Hello   world", items[0]["content"], "input must not be modified")

	require.Len(t, res.Report.Stages, 2)
	assert.Equal(t, OpTextCleaning, res.Report.Stages[0].Operation)
	assert.Equal(t, 0, res.Report.Stages[0].Removed)
	assert.Equal(t, OpDeduplication, res.Report.Stages[1].Operation)
	assert.Equal(t, 2, res.Report.Stages[1].ItemsBefore)
	assert.Equal(t, 1, res.Report.Stages[1].ItemsAfter)
	assert.Equal(t, 1, res.Report.Stages[1].Removed)

	assert.Equal(t, 2, res.Report.Summary.OriginalCount)
	assert.Equal(t, 1, res.Report.Summary.FinalCount)
	assert.InDelta(t, 50.0, res.Report.Summary.RemovalRate, 1e-9)
}

func TestTextCleaning_Levels(t *testing.T) {
	input := "Sooooooo   good!!!!!!  #win @@@@ yes"
	tests := []struct {
		level Aggressiveness
		want  string
	}{
		{Conservative, "Sooooooo good!!!!!! #win @@@@ yes"},
		{Moderate, "Sooo good!!! #win @@@@ yes"},
		{Aggressive, "Soo good!! win yes"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			got := cleanText([]map[string]any{{"content": input}}, tt.level)
			assert.Equal(t, tt.want, got[0]["content"])
		})
	}
}

func TestTextCleaning_SkipsNonStringContent(t *testing.T) {
	got := cleanText([]map[string]any{{"content": 12.0}, {"title": "no content"}}, Aggressive)
	assert.Equal(t, 12.0, got[0]["content"])
	assert.NotContains(t, got[1], "content")
}

func TestDeduplication_ConservativeKeepsDifferentContent(t *testing.T) {
	prefix := strings.Repeat("a", 100)
	items := []map[string]any{{"content": prefix + "one"}, {"content": prefix + "two"}, {"content": prefix + "one"}}

	conservative := deduplicate(cloneItems(items), Conservative)
	assert.Equal(t, []string{prefix + "one", prefix + "two"}, contents(conservative))

	moderate := deduplicate(cloneItems(items), Moderate)
	assert.Equal(t, []string{prefix + "one"}, contents(moderate))
}

func TestDeduplication_WithoutContent(t *testing.T) {
	items := []map[string]any{{"id": "a"}, {"id": "a"}, {"id": "b"}, {"content": ""}, {"content": ""}}
	got := deduplicate(items, Aggressive)
	assert.Len(t, got, 3)
}

func TestValidation_DropsFailingRecords(t *testing.T) {
	items := []map[string]any{
		{"id": "0e1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b", "title": "River", "content": passingContent},
		{"title": "", "content": "x"},
	}
	res := run(t, items, Options{Operations: []string{"validation"}})

	require.Len(t, res.Items, 1)
	assert.Equal(t, "River", res.Items[0]["title"])
	stage := res.Report.Stages[0]
	assert.Greater(t, stage.QualityAfter, stage.QualityBefore)
	assert.InDelta(t, stage.QualityAfter-stage.QualityBefore, stage.QualityDelta, 1e-9)
	assert.Greater(t, res.Report.Summary.QualityImprovement, 0.0)
}

func TestEnhancement_FillsWithoutOverwriting(t *testing.T) {
	items := []map[string]any{
		{"content": passingContent},
		{"content": passingContent, "metadata": map[string]any{"word_count": 3.0}},
		{"content": passingContent, "metadata": "opaque"},
	}
	got := enhance(cloneItems(items))

	meta := got[0]["metadata"].(map[string]any)
	assert.Equal(t, 17, meta["word_count"])
	assert.Equal(t, 1, meta["reading_time"])

	kept := got[1]["metadata"].(map[string]any)
	assert.Equal(t, 3.0, kept["word_count"])
	assert.Equal(t, 1, kept["reading_time"])

	assert.Equal(t, "opaque", got[2]["metadata"])
	assert.NotContains(t, items[1]["metadata"].(map[string]any), "reading_time")
}

func TestClean_DefaultsAndReport(t *testing.T) {
	var streamed []Operation
	res := run(t, []map[string]any{{"content": passingContent}}, Options{
		OnStage: func(s StageReport) { streamed = append(streamed, s.Operation) },
	})

	assert.Equal(t, Moderate, res.Report.Aggressiveness)
	assert.Equal(t, AllOperations, res.Report.Operations)
	assert.Equal(t, AllOperations, streamed)

	_, err := ulid.Parse(res.Report.RunID)
	assert.NoError(t, err)
}

func TestClean_RunIDsAreUnique(t *testing.T) {
	c := New()
	a, err := c.Clean(context.Background(), nil, Options{})
	require.NoError(t, err)
	b, err := c.Clean(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, a.Report.RunID, b.Report.RunID)
	assert.Zero(t, a.Report.Summary.RemovalRate)
	assert.Empty(t, a.Items)
}

func TestClean_InvalidOptions(t *testing.T) {
	_, err := New().Clean(context.Background(), nil, Options{Operations: []string{"spellcheck"}})
	assert.ErrorIs(t, err, ErrUnknownOperation)

	_, err = New().Clean(context.Background(), nil, Options{Aggressiveness: "extreme"})
	assert.ErrorIs(t, err, ErrInvalidAggressiveness)
}

func TestClean_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Clean(ctx, []map[string]any{{"content": "x"}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseOperations(t *testing.T) {
	ops, err := ParseOperations([]string{" Enhancement", "text_cleaning"})
	require.NoError(t, err)
	assert.Equal(t, []Operation{OpEnhancement, OpTextCleaning}, ops)

	ops, err = ParseOperations(nil)
	require.NoError(t, err)
	ops[0] = "mutated"
	assert.Equal(t, OpTextCleaning, AllOperations[0])
}

func cloneItems(items []map[string]any) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, item := range items {
		out[i] = cloneMap(item)
	}
	return out
}
