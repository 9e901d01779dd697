package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitflow/internal/model"
	"habitflow/internal/service"
	"habitflow/pkg/logger"
	"habitflow/pkg/outbox"
)

// getUserID 统一的 userID 读取工具
func getUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	return userID, true
}

// location 解析可选的 tz 查询参数，未提供时返回 nil（使用服务默认时区）
func location(c *gin.Context) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		return nil, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tz parameter"})
		return nil, false
	}
	return loc, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrHabitNotFound),
		errors.Is(err, model.ErrLogNotFound),
		errors.Is(err, outbox.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidTimeOfDay),
		errors.Is(err, model.ErrInvalidCategory),
		errors.Is(err, model.ErrInvalidWeekday),
		errors.Is(err, model.ErrEmptyFrequency),
		errors.Is(err, model.ErrMissingTitle),
		errors.Is(err, model.ErrMissingTrigger),
		errors.Is(err, service.ErrRangeTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError 将领域错误映射为 HTTP 响应，5xx 记录日志
func writeError(c *gin.Context, log *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithTrace(c.Request.Context(), log).Error(op+" failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
