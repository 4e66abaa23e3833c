package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/pipeline"
	"github.com/act-placemat/normalizer/pkg/logger"
)

// SnapshotRecorder archives a metrics snapshot before it is cleared.
type SnapshotRecorder interface {
	RecordMetricsSnapshot(values map[string]float64, tags map[string]string) error
}

type MetricsHandler struct {
	metrics  *pipeline.Metrics
	recorder SnapshotRecorder
}

func NewMetricsHandler(metrics *pipeline.Metrics, recorder SnapshotRecorder) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, recorder: recorder}
}

func (h *MetricsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"metrics": h.metrics.Report(),
	})
}

func (h *MetricsHandler) Reset(c *fiber.Ctx) error {
	if h.recorder != nil {
		s := h.metrics.Report()
		err := h.recorder.RecordMetricsSnapshot(map[string]float64{
			"totalProcessed":       float64(s.TotalProcessed),
			"validRecords":         float64(s.ValidRecords),
			"invalidRecords":       float64(s.InvalidRecords),
			"transformationErrors": float64(s.TransformationErrors),
			"qualityScore":         s.QualityScore,
			"successRate":          s.SuccessRate,
		}, map[string]string{"event": "reset"})
		if err != nil {
			logger.Warn("Failed to archive metrics before reset", zap.Error(err))
		}
	}

	h.metrics.Reset()
	logger.Info("Pipeline metrics reset")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Metrics reset",
		"metrics": h.metrics.Report(),
	})
}
