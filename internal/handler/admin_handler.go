package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitflow/pkg/outbox"
)

// OutboxAdmin is implemented by outbox.ReplayService.
type OutboxAdmin interface {
	FailedEvents(ctx context.Context, limit int) ([]*outbox.Event, error)
	ReplayEvent(ctx context.Context, eventID int64) error
}

type AdminHandler struct {
	replayService OutboxAdmin
	logger        *zap.Logger
}

func NewAdminHandler(replayService OutboxAdmin, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		replayService: replayService,
		logger:        logger,
	}
}

// FailedEvents 列出失败的 Outbox 事件
// GET /admin/outbox/failed?limit=100
func (h *AdminHandler) FailedEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	events, err := h.replayService.FailedEvents(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, "list failed events", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// ReplayOutboxEvent 重放指定的 Outbox 事件
// POST /admin/outbox/:id/replay
func (h *AdminHandler) ReplayOutboxEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	if err := h.replayService.ReplayEvent(c.Request.Context(), eventID); err != nil {
		writeError(c, h.logger, "replay event", err)
		return
	}

	h.logger.Info("Outbox event replayed by admin",
		zap.Int64("event_id", eventID),
		zap.String("user_id", c.GetString("user_id")),
	)
	c.JSON(http.StatusOK, gin.H{
		"status":   "replayed",
		"event_id": eventID,
	})
}
