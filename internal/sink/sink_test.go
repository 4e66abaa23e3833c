package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/act-placemat/normalizer/internal/schema"
)

type enricherFunc func(ctx context.Context, records []schema.Record) error

func (f enricherFunc) Enrich(ctx context.Context, records []schema.Record) error { return f(ctx, records) }

func doc(id string) schema.Record {
	return &schema.Document{ID: id, SourceType: schema.SourceDocument, Content: "text", TotalChunks: 1}
}

func TestMulti_WritesInOrder(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	require.NoError(t, Multi{a, b}.Upsert(context.Background(), []schema.Record{doc("1"), doc("2")}))
	assert.Len(t, a.Records, 2)
	assert.Len(t, b.Records, 2)
}

func TestMulti_StopsAtFirstErrorUnmodified(t *testing.T) {
	boom := errors.New("disk full")
	a, b := NewMemory(), NewMemory()
	a.Err = boom

	err := Multi{a, b}.Upsert(context.Background(), []schema.Record{doc("1")})
	assert.Same(t, boom, err)
	assert.Zero(t, b.Calls)
}

func TestMulti_SkipsEmptyBatches(t *testing.T) {
	a := NewMemory()
	require.NoError(t, Multi{a}.Upsert(context.Background(), nil))
	assert.Zero(t, a.Calls)
}

func TestEnriched(t *testing.T) {
	mem := NewMemory()
	called := 0
	s := Enriched{
		Enricher: enricherFunc(func(_ context.Context, recs []schema.Record) error {
			called++
			recs[0].(*schema.Document).Embedding = []float64{1}
			return errors.New("partial failure")
		}),
		Sink: mem,
	}

	require.NoError(t, s.Upsert(context.Background(), []schema.Record{doc("1")}))
	assert.Equal(t, 1, called)
	assert.Equal(t, []float64{1}, mem.Records["1"].(*schema.Document).Embedding)
	assert.Equal(t, "memory", s.Name())
}
