package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_records_processed_total",
			Help: "Raw records handed to the pipeline",
		},
		[]string{"source_type"},
	)

	RecordsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_records_accepted_total",
			Help: "Canonical records that passed validation and quality scoring",
		},
		[]string{"target_schema"},
	)

	RecordsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_records_rejected_total",
			Help: "Canonical records dropped by schema validation or quality scoring",
		},
		[]string{"target_schema", "reason"},
	)

	TransformationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_records_transformation_errors_total",
			Help: "Raw records the source transformer could not coerce",
		},
		[]string{"source_type"},
	)

	QualityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "normalizer_records_quality_score",
			Help:    "Overall quality score of scored records",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	TransformDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "normalizer_transform_duration_seconds",
			Help:    "Time spent executing the pipeline for one raw record",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"source_type"},
	)

	CleanRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_clean_runs_total",
			Help: "Cleaning runs executed",
		},
		[]string{"aggressiveness"},
	)

	CleanRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_clean_removed_total",
			Help: "Records removed by a cleaning stage",
		},
		[]string{"operation"},
	)

	CleanStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "normalizer_clean_stage_duration_seconds",
			Help:    "Cleaning stage duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	SinkWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_sink_writes_total",
			Help: "Record batches written to a sink",
		},
		[]string{"sink", "status"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	EmbeddingTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_embedding_tokens_used",
			Help: "Total tokens spent generating embeddings",
		},
		[]string{"model"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RecordsProcessed)
		prometheus.MustRegister(RecordsAccepted)
		prometheus.MustRegister(RecordsRejected)
		prometheus.MustRegister(TransformationErrors)
		prometheus.MustRegister(QualityScore)
		prometheus.MustRegister(TransformDuration)
		prometheus.MustRegister(CleanRuns)
		prometheus.MustRegister(CleanRemoved)
		prometheus.MustRegister(CleanStageDuration)
		prometheus.MustRegister(SinkWrites)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
		prometheus.MustRegister(EmbeddingTokensUsed)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
