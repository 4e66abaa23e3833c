package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/act-placemat/normalizer/internal/schema"
)

type fakeAPI struct {
	mu     sync.Mutex
	inputs [][]string
	err    error
}

func (f *fakeAPI) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return openai.EmbeddingResponse{}, f.err
	}
	req := conv.Convert()
	input := req.Input.([]string)
	f.inputs = append(f.inputs, input)

	resp := openai.EmbeddingResponse{Usage: openai.Usage{TotalTokens: len(input)}}
	// answer in reverse so the index mapping is exercised
	for i := len(input) - 1; i >= 0; i-- {
		resp.Data = append(resp.Data, openai.Embedding{Index: i, Embedding: []float32{float32(len(input[i])), 1}})
	}
	return resp, nil
}

func TestEmbedRecords_FillsMissing(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(api, "", time.Second)

	kept := []float64{9, 9}
	story := &schema.Story{ID: "s1", Content: "four"}
	teller := &schema.Storyteller{ID: "p1", Bio: "a bio"}
	embedded := &schema.Document{ID: "d1", Content: "already", Embedding: kept}
	empty := &schema.Document{ID: "d2", Content: "   "}

	require.NoError(t, c.Enrich(context.Background(), []schema.Record{story, teller, embedded, empty}))

	require.Len(t, api.inputs, 1)
	assert.Equal(t, []string{"four", "a bio"}, api.inputs[0])
	assert.Equal(t, []float64{4, 1}, story.Embedding)
	assert.Equal(t, []float64{5, 1}, teller.Embedding)
	assert.Equal(t, kept, embedded.Embedding)
	assert.Nil(t, empty.Embedding)
}

func TestGenerateBatchEmbeddings_Batches(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(api, "text-embedding-3-small", time.Second)

	texts := make([]string, 230)
	for i := range texts {
		texts[i] = "x"
	}
	vectors, err := c.GenerateBatchEmbeddings(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, 230)
	require.Len(t, api.inputs, 3)
	assert.Len(t, api.inputs[2], 30)
}

func TestGenerateBatchEmbeddings_Error(t *testing.T) {
	api := &fakeAPI{err: errors.New("quota exceeded")}
	c := newClient(api, "", time.Second)
	c.retryConfig.MaxAttempts = 1

	_, err := c.GenerateBatchEmbeddings(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateBatchEmbeddings_Empty(t *testing.T) {
	c := newClient(&fakeAPI{}, "", time.Second)
	vectors, err := c.GenerateBatchEmbeddings(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}
