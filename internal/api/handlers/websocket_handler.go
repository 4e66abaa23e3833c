package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/cleaner"
	"github.com/act-placemat/normalizer/pkg/logger"
)

// WebSocketHandler streams cleaning runs stage by stage.
type WebSocketHandler struct {
	clean *CleanHandler
}

func NewWebSocketHandler(clean *CleanHandler) *WebSocketHandler {
	return &WebSocketHandler{
		clean: clean,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type string `json:"type"`
			cleanRequest
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "clean" {
			h.sendError(c, "unsupported message type: "+msg.Type)
			continue
		}

		if err := h.streamClean(c, msg.cleanRequest); err != nil {
			logger.Error("Failed to stream cleaning run", zap.Error(err))
			h.sendError(c, err.Error())
		}
	}
}

func (h *WebSocketHandler) streamClean(c *websocket.Conn, req cleanRequest) error {
	items, err := objects(req.Data)
	if err != nil {
		return err
	}

	var writeErr error
	opts := h.clean.options(req)
	opts.OnStage = func(stage cleaner.StageReport) {
		if writeErr == nil {
			writeErr = c.WriteJSON(map[string]any{
				"type":  "stage",
				"stage": stage,
			})
		}
	}

	result, err := h.clean.cleaner.Clean(context.Background(), items, opts)
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	return c.WriteJSON(map[string]any{
		"type":   "complete",
		"report": result.Report,
		"data":   result.Items,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]any{
		"type":  "error",
		"error": errorMsg,
	}

	if err := c.WriteJSON(msg); err != nil {
		logger.Debug("Failed to send websocket error", zap.Error(err))
	}
}
