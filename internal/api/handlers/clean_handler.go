package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/cleaner"
	"github.com/act-placemat/normalizer/pkg/logger"
)

type CleanDefaults struct {
	Aggressiveness string
	Operations     []string
}

type CleanHandler struct {
	cleaner  *cleaner.Cleaner
	defaults CleanDefaults
}

func NewCleanHandler(c *cleaner.Cleaner, defaults CleanDefaults) *CleanHandler {
	return &CleanHandler{cleaner: c, defaults: defaults}
}

type cleanRequest struct {
	Data           any      `json:"data"`
	Operations     []string `json:"operations"`
	Aggressiveness string   `json:"aggressiveness"`
}

var errNotArray = errors.New("data must be an array of objects")

func (h *CleanHandler) options(req cleanRequest) cleaner.Options {
	opts := cleaner.Options{
		Operations:     req.Operations,
		Aggressiveness: req.Aggressiveness,
	}
	if len(opts.Operations) == 0 {
		opts.Operations = h.defaults.Operations
	}
	if opts.Aggressiveness == "" {
		opts.Aggressiveness = h.defaults.Aggressiveness
	}
	return opts
}

func objects(data any) ([]map[string]any, error) {
	list, ok := data.([]any)
	if !ok {
		return nil, errNotArray
	}
	items := make([]map[string]any, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errNotArray
		}
		items[i] = m
	}
	return items, nil
}

func isOptionError(err error) bool {
	return errors.Is(err, cleaner.ErrUnknownOperation) || errors.Is(err, cleaner.ErrInvalidAggressiveness)
}

func (h *CleanHandler) Clean(c *fiber.Ctx) error {
	var req cleanRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	items, err := objects(req.Data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.cleaner.Clean(c.UserContext(), items, h.options(req))
	if err != nil {
		if isOptionError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Error("Cleaning failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  result.Report,
		"data":    result.Items,
	})
}
