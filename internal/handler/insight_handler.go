package handler

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitflow/internal/analytics"
	"habitflow/internal/service"
)

// InsightService is implemented by service.InsightService.
type InsightService interface {
	Focus(ctx context.Context, userID string, loc *time.Location) (analytics.FocusView, error)
	Report(ctx context.Context, userID string, loc *time.Location, r service.ReportRange) (analytics.Report, error)
	Streak(ctx context.Context, userID, habitID string, loc *time.Location) (int, error)
}

type InsightHandler struct {
	insights InsightService
	logger   *zap.Logger
}

func NewInsightHandler(insights InsightService, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{insights: insights, logger: logger}
}

// Focus handles GET /focus
func (h *InsightHandler) Focus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	view, err := h.insights.Focus(c.Request.Context(), userID, loc)
	if err != nil {
		writeError(c, h.logger, "focus", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Analytics handles GET /analytics?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *InsightHandler) Analytics(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	var r service.ReportRange
	for _, p := range []struct {
		name string
		dst  **civil.Date
	}{{"from", &r.From}, {"to", &r.To}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		d, err := civil.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.name + " parameter"})
			return
		}
		*p.dst = &d
	}

	report, err := h.insights.Report(c.Request.Context(), userID, loc, r)
	if err != nil {
		writeError(c, h.logger, "analytics", err)
		return
	}
	c.JSON(http.StatusOK, NewReportResponse(report))
}

// Streak handles GET /habits/:id/streak
func (h *InsightHandler) Streak(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	habitID := c.Param("id")
	streak, err := h.insights.Streak(c.Request.Context(), userID, habitID, loc)
	if err != nil {
		writeError(c, h.logger, "streak", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit_id": habitID, "streak": streak})
}
