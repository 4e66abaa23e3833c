package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Routes struct {
	Transform *TransformHandler
	Quality   *QualityHandler
	Clean     *CleanHandler
	Schema    *SchemaHandler
	Metrics   *MetricsHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler
}

// DataRoutes are the POST routes whose body must carry "data".
var DataRoutes = []string{"/transform", "/validate", "/quality-check", "/clean"}

// Register mounts every route on router, normally the /api/v1 group.
func Register(router fiber.Router, r Routes) {
	router.Post("/transform", r.Transform.Transform)
	router.Post("/validate", r.Quality.Validate)
	router.Post("/quality-check", r.Quality.QualityCheck)
	router.Post("/clean", r.Clean.Clean)
	router.Get("/schemas", r.Schema.Schemas)
	router.Get("/metrics", r.Metrics.Metrics)
	router.Post("/metrics/reset", r.Metrics.Reset)
	router.Get("/health", r.Health.Health)
	router.Get("/ready", r.Health.Ready)

	if r.WebSocket != nil {
		router.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		router.Get("/ws/clean", websocket.New(r.WebSocket.HandleConnection))
	}
}
