package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/act-placemat/normalizer/internal/schema"
)

// CanonicalRecord is the persisted row of one accepted canonical record.
// Payload holds the full record JSON; the other columns are projections
// used for lookups.
type CanonicalRecord struct {
	ID           string
	Kind         schema.Kind
	SourceType   schema.SourceType
	SourceID     string
	Title        string
	Content      string
	ChunkIndex   int
	TotalChunks  int
	QualityScore float64
	Payload      json.RawMessage
	NormalizedAt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MetricSample struct {
	Name      string
	Value     float64
	Tags      map[string]string
	Timestamp time.Time
}

// FromRecord projects rec onto a row. Timestamps are left for the store.
func FromRecord(rec schema.Record) (*CanonicalRecord, error) {
	if rec == nil {
		return nil, fmt.Errorf("nil record")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record %s: %w", rec.RecordID(), err)
	}

	doc := rec.AsDocument()
	return &CanonicalRecord{
		ID:           rec.RecordID(),
		Kind:         rec.Kind(),
		SourceType:   doc.SourceType,
		SourceID:     doc.SourceID,
		Title:        doc.Title,
		Content:      doc.Content,
		ChunkIndex:   doc.ChunkIndex,
		TotalChunks:  doc.TotalChunks,
		QualityScore: QualityScore(rec),
		Payload:      payload,
		NormalizedAt: doc.NormalizedAt,
	}, nil
}

// QualityScore returns the overall score stored on rec, or 0 when unscored.
func QualityScore(rec schema.Record) float64 {
	if s, ok := rec.(*schema.Story); ok {
		return s.Metadata.QualityScore
	}
	m := rec.AsDocument().QualityMetrics
	if m == nil {
		return 0
	}
	return (m.Completeness + m.Accuracy + m.Consistency + m.Validity) / 4
}

// Decode rebuilds the canonical record held in the payload.
func (r *CanonicalRecord) Decode() (schema.Record, error) {
	rec := schema.New(r.Kind)
	if err := json.Unmarshal(r.Payload, rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", r.ID, err)
	}
	return rec, nil
}
