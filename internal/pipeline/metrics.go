package pipeline

import (
	"sync/atomic"

	"github.com/act-placemat/normalizer/internal/metrics"
)

// Metrics counts pipeline outcomes. Counters are atomic so one Executor can
// serve concurrent requests. Only the Executor increments them.
type Metrics struct {
	totalProcessed       atomic.Int64
	validRecords         atomic.Int64
	invalidRecords       atomic.Int64
	transformationErrors atomic.Int64
}

type Snapshot struct {
	TotalProcessed       int64   `json:"totalProcessed"`
	ValidRecords         int64   `json:"validRecords"`
	InvalidRecords       int64   `json:"invalidRecords"`
	TransformationErrors int64   `json:"transformationErrors"`
	QualityScore         float64 `json:"qualityScore"`
	SuccessRate          float64 `json:"successRate"`
}

// Report reads the counters and derives the quality score and success rate,
// both as percentages of the processed total.
func (m *Metrics) Report() Snapshot {
	s := Snapshot{
		TotalProcessed:       m.totalProcessed.Load(),
		ValidRecords:         m.validRecords.Load(),
		InvalidRecords:       m.invalidRecords.Load(),
		TransformationErrors: m.transformationErrors.Load(),
	}
	if s.TotalProcessed > 0 {
		total := float64(s.TotalProcessed)
		s.QualityScore = float64(s.ValidRecords) / total * 100
		s.SuccessRate = float64(s.TotalProcessed-s.TransformationErrors) / total * 100
	}
	return s
}

// Reset zeroes every counter. Prometheus counters are monotonic and are not
// affected.
func (m *Metrics) Reset() {
	m.totalProcessed.Store(0)
	m.validRecords.Store(0)
	m.invalidRecords.Store(0)
	m.transformationErrors.Store(0)
}

func (m *Metrics) processed(source string) {
	m.totalProcessed.Add(1)
	metrics.RecordsProcessed.WithLabelValues(source).Inc()
}

func (m *Metrics) transformFailed(source string) {
	m.transformationErrors.Add(1)
	metrics.TransformationErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) rejected(target, reason string) {
	m.invalidRecords.Add(1)
	metrics.RecordsRejected.WithLabelValues(target, reason).Inc()
}

func (m *Metrics) accepted(target string) {
	m.validRecords.Add(1)
	metrics.RecordsAccepted.WithLabelValues(target).Inc()
}
