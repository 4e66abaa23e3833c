// Package sink fans accepted canonical records out to the configured stores.
package sink

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/metrics"
	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/pkg/logger"
)

// Sink persists canonical records keyed by id.
type Sink interface {
	Name() string
	Upsert(ctx context.Context, records []schema.Record) error
}

// Multi writes to each sink in order and stops at the first failure, which is
// returned unmodified.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Upsert(ctx context.Context, records []schema.Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, s := range m {
		if err := s.Upsert(ctx, records); err != nil {
			metrics.SinkWrites.WithLabelValues(s.Name(), "error").Inc()
			logger.Error("Sink write failed", zap.String("sink", s.Name()), zap.Int("records", len(records)), zap.Error(err))
			return err
		}
		metrics.SinkWrites.WithLabelValues(s.Name(), "ok").Inc()
	}
	return nil
}

// Enricher mutates records before they are persisted.
type Enricher interface {
	Enrich(ctx context.Context, records []schema.Record) error
}

// Enriched runs an enricher ahead of a sink. Enrichment failures are logged
// and the records are still written.
type Enriched struct {
	Enricher Enricher
	Sink     Sink
}

func (e Enriched) Name() string { return e.Sink.Name() }

func (e Enriched) Upsert(ctx context.Context, records []schema.Record) error {
	if e.Enricher != nil && len(records) > 0 {
		if err := e.Enricher.Enrich(ctx, records); err != nil {
			logger.Warn("Record enrichment failed", zap.Error(err))
		}
	}
	return e.Sink.Upsert(ctx, records)
}

// Memory is an in-process sink used by tests and the CLI dry runs.
type Memory struct {
	mu      sync.Mutex
	Records map[string]schema.Record
	Err     error
	Calls   int
}

func NewMemory() *Memory {
	return &Memory{Records: make(map[string]schema.Record)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Upsert(_ context.Context, records []schema.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	for _, r := range records {
		m.Records[r.RecordID()] = r
	}
	return nil
}
