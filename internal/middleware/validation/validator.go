package validation

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxBodySize         int
	AllowedContentTypes []string
	// DataRoutes are path suffixes whose POST body must carry a "data" field.
	DataRoutes []string
	Logger     *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		body := c.Body()
		if len(body) > cfg.MaxBodySize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Request body exceeds maximum size",
			})
		}

		if !requiresData(c.Path(), cfg.DataRoutes) {
			return c.Next()
		}

		if !allowedType(c.Get(fiber.HeaderContentType), cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		var req map[string]json.RawMessage
		if err := json.Unmarshal(body, &req); err != nil {
			cfg.Logger.Debug("Rejected malformed body", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		data, ok := req["data"]
		if !ok || string(data) == "null" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "data is required",
			})
		}

		return c.Next()
	}
}

func requiresData(path string, routes []string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, r := range routes {
		if strings.HasSuffix(path, r) {
			return true
		}
	}
	return false
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
