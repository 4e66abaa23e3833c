package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/pipeline"
	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/sink"
	"github.com/act-placemat/normalizer/pkg/logger"
)

type TransformDefaults struct {
	SourceType   string
	TargetSchema string
}

type TransformHandler struct {
	executor *pipeline.Executor
	sink     sink.Sink
	defaults TransformDefaults
}

// NewTransformHandler builds the handler. A nil sink disables persistence.
func NewTransformHandler(executor *pipeline.Executor, s sink.Sink, defaults TransformDefaults) *TransformHandler {
	if defaults.SourceType == "" {
		defaults.SourceType = "generic"
	}
	if defaults.TargetSchema == "" {
		defaults.TargetSchema = string(schema.KindDocument)
	}
	return &TransformHandler{
		executor: executor,
		sink:     s,
		defaults: defaults,
	}
}

func (h *TransformHandler) Transform(c *fiber.Ctx) error {
	var req struct {
		Data         any    `json:"data"`
		SourceType   string `json:"sourceType"`
		TargetSchema string `json:"targetSchema"`
		ValidateOnly bool   `json:"validateOnly"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Data == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "data is required",
		})
	}

	if req.SourceType == "" {
		req.SourceType = h.defaults.SourceType
	}
	if req.TargetSchema == "" {
		req.TargetSchema = h.defaults.TargetSchema
	}

	cfg := h.executor.Resolve(req.SourceType, req.TargetSchema)
	result, err := h.executor.ExecuteBatch(c.UserContext(), cfg, pipeline.Items(req.Data))
	if err != nil {
		logger.Error("Transform request aborted", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	persisted := 0
	if !req.ValidateOnly && h.sink != nil && len(result.Records) > 0 {
		if err := h.sink.Upsert(c.UserContext(), result.Records); err != nil {
			logger.Error("Failed to persist records", zap.Int("records", len(result.Records)), zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		persisted = len(result.Records)
	}

	logger.Info("Transform completed",
		zap.String("source_type", cfg.Source),
		zap.String("target_schema", string(cfg.Target)),
		zap.Int("input_count", result.InputCount),
		zap.Int("output_count", len(result.Records)),
		zap.Int("errors", len(result.Errors)),
	)

	return c.JSON(fiber.Map{
		"success":       true,
		"source_type":   cfg.Source,
		"target_schema": cfg.Target,
		"validate_only": req.ValidateOnly,
		"input_count":   result.InputCount,
		"output_count":  len(result.Records),
		"errors":        result.Errors,
		"data":          result.Records,
		"persisted":     persisted,
	})
}
