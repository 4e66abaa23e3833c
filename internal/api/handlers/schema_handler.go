package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/act-placemat/normalizer/internal/quality"
	"github.com/act-placemat/normalizer/internal/schema"
	"github.com/act-placemat/normalizer/internal/transform"
)

type SchemaHandler struct {
	registry *transform.Registry
}

func NewSchemaHandler(registry *transform.Registry) *SchemaHandler {
	return &SchemaHandler{registry: registry}
}

func (h *SchemaHandler) Schemas(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":            true,
		"schemas":            schema.Describe(),
		"transformers":       h.registry.Names(),
		"quality_dimensions": quality.Dimensions,
		"pass_threshold":     quality.PassThreshold,
	})
}
