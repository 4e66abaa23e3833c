package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps []Pinger
}

func NewHealthHandler(deps ...Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{}
	ready := true
	for _, d := range h.deps {
		if err := d.Ping(ctx); err != nil {
			checks[d.Name()] = err.Error()
			ready = false
			continue
		}
		checks[d.Name()] = "ok"
	}

	status := fiber.StatusOK
	if !ready {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"ready":  ready,
		"checks": checks,
	})
}
