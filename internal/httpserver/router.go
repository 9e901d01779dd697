package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habitflow/internal/handler"
	"habitflow/pkg/otel"
	"habitflow/pkg/rbac"
)

// Pinger reports whether the database is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	habitHandler *handler.HabitHandler,
	insightHandler *handler.InsightHandler,
	adminHandler *handler.AdminHandler,
	jwtSecret string,
	db Pinger,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), otel.GinMiddleware(), RequestLogger(logger), MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/habits", RequirePermission(rbac.PermissionReadHabit), habitHandler.ListHabits)
		auth.POST("/habits", RequirePermission(rbac.PermissionCreateHabit), habitHandler.CreateHabit)
		auth.POST("/habits/:id/archive", RequirePermission(rbac.PermissionArchiveHabit), habitHandler.ArchiveHabit)
		auth.POST("/habits/:id/logs", RequirePermission(rbac.PermissionWriteLog), habitHandler.LogHabit)
		auth.POST("/habits/:id/friction", RequirePermission(rbac.PermissionWriteLog), habitHandler.LogFriction)
		auth.PATCH("/logs/:id/notes", RequirePermission(rbac.PermissionWriteLog), habitHandler.UpdateNotes)

		auth.GET("/focus", RequirePermission(rbac.PermissionReadInsights), insightHandler.Focus)
		auth.GET("/analytics", RequirePermission(rbac.PermissionReadInsights), insightHandler.Analytics)
		auth.GET("/habits/:id/streak", RequirePermission(rbac.PermissionReadInsights), insightHandler.Streak)
	}

	admin := auth.Group("/admin")
	{
		admin.GET("/outbox/failed", RequirePermission(rbac.PermissionReadOutbox), adminHandler.FailedEvents)
		admin.POST("/outbox/:id/replay", RequirePermission(rbac.PermissionReplayOutbox), adminHandler.ReplayOutboxEvent)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
