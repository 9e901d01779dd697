package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitflow/internal/model"
	"habitflow/internal/service"
)

// HabitService is implemented by service.HabitService.
type HabitService interface {
	ListHabits(ctx context.Context, userID string) ([]model.Habit, error)
	CreateHabit(ctx context.Context, userID string, in service.HabitInput) (*model.Habit, error)
	ArchiveHabit(ctx context.Context, userID, habitID string) error
	LogHabit(ctx context.Context, userID, habitID string, in service.LogInput) (*model.HabitLog, error)
	LogFriction(ctx context.Context, userID, habitID, reason string) (*model.HabitLog, error)
	UpdateNotes(ctx context.Context, userID, logID string, notes *string) (*model.HabitLog, error)
}

type HabitHandler struct {
	habits HabitService
	logger *zap.Logger
}

func NewHabitHandler(habits HabitService, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, logger: logger}
}

type createHabitRequest struct {
	Title         string          `json:"title"`
	TriggerCue    string          `json:"trigger_cue"`
	TimeOfDay     model.TimeOfDay `json:"time_of_day"`
	Frequency     model.Frequency `json:"frequency"`
	Category      model.Category  `json:"category"`
	TwoMinuteRule bool            `json:"two_minute_rule"`
}

type logHabitRequest struct {
	Status      model.Status `json:"status"`
	Notes       *string      `json:"notes"`
	CompletedAt *time.Time   `json:"completed_at"`
}

type frictionRequest struct {
	Reason string `json:"reason"`
}

type notesRequest struct {
	Notes *string `json:"notes"`
}

// ListHabits handles GET /habits
func (h *HabitHandler) ListHabits(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	habits, err := h.habits.ListHabits(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "list habits", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

// CreateHabit handles POST /habits
func (h *HabitHandler) CreateHabit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	habit, err := h.habits.CreateHabit(c.Request.Context(), userID, service.HabitInput{
		Title:         req.Title,
		TriggerCue:    req.TriggerCue,
		TimeOfDay:     req.TimeOfDay,
		Frequency:     req.Frequency,
		Category:      req.Category,
		TwoMinuteRule: req.TwoMinuteRule,
	})
	if err != nil {
		writeError(c, h.logger, "create habit", err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

// ArchiveHabit handles POST /habits/:id/archive
func (h *HabitHandler) ArchiveHabit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	habitID := c.Param("id")
	if err := h.habits.ArchiveHabit(c.Request.Context(), userID, habitID); err != nil {
		writeError(c, h.logger, "archive habit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived", "habit_id": habitID})
}

// LogHabit handles POST /habits/:id/logs
func (h *HabitHandler) LogHabit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req logHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	l, err := h.habits.LogHabit(c.Request.Context(), userID, c.Param("id"), service.LogInput{
		Status:         req.Status,
		Notes:          req.Notes,
		CompletedAt:    req.CompletedAt,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeError(c, h.logger, "log habit", err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// LogFriction handles POST /habits/:id/friction
func (h *HabitHandler) LogFriction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req frictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	l, err := h.habits.LogFriction(c.Request.Context(), userID, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, h.logger, "log friction", err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// UpdateNotes handles PATCH /logs/:id/notes
func (h *HabitHandler) UpdateNotes(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	l, err := h.habits.UpdateNotes(c.Request.Context(), userID, c.Param("id"), req.Notes)
	if err != nil {
		writeError(c, h.logger, "update notes", err)
		return
	}
	c.JSON(http.StatusOK, l)
}
