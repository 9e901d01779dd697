package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitflow/config"
	"habitflow/internal/analytics"
	"habitflow/internal/cache"
	"habitflow/internal/handler"
	"habitflow/internal/httpserver"
	"habitflow/internal/repository"
	"habitflow/internal/service"
	"habitflow/pkg/circuitbreaker"
	"habitflow/pkg/db"
	"habitflow/pkg/logger"
	"habitflow/pkg/mq"
	"habitflow/pkg/otel"
	"habitflow/pkg/outbox"
	"habitflow/pkg/redis"
	"habitflow/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.Log)
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid analytics timezone", zap.String("timezone", cfg.Analytics.Timezone), zap.Error(err))
	}

	log.Info("Starting habitflow api...", zap.String("timezone", loc.String()))

	// Tracing
	shutdownTracing, err := otel.Init("habitflow-api", cfg.Tracing, log)
	if err != nil {
		log.Fatal("OpenTelemetry initialization failed", zap.Error(err))
	}
	defer shutdownTracing()

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb, err := redis.NewRedisClient(cfg.Redis, log)
	if err != nil {
		log.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	// RabbitMQ Publisher（outbox dispatcher 使用）
	publisher, err := mq.NewPublisher(cfg.MQ.URL, "habitflow-api")
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Outbox
	outboxRepo := outbox.NewRepository(dbConn, log)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	replayService := outbox.NewReplayService(outboxRepo, publisher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	// Repositories
	habitRepo := repository.NewHabitRepository(dbConn, outboxRepo, log)
	logRepo := repository.NewLogRepository(dbConn, outboxRepo, log)

	// Services
	snapshotCache := cache.NewSnapshotCache(rdb, cfg.Analytics.CacheTTL, circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), log)
	deduper := util.NewDeduper(rdb, 24*time.Hour, log)
	habitService := service.NewHabitService(habitRepo, logRepo, snapshotCache, deduper, cfg.Analytics.LogWindow, log)
	insightService := service.NewInsightService(habitService, analytics.New(analytics.WithLocation(loc)), cfg.Analytics.MaxRangeDays, log)

	// Handlers
	habitHandler := handler.NewHabitHandler(habitService, log)
	insightHandler := handler.NewInsightHandler(insightService, log)
	adminHandler := handler.NewAdminHandler(replayService, log)

	router := httpserver.NewRouter(habitHandler, insightHandler, adminHandler, cfg.JWT.Secret, dbConn, log)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down habitflow api gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("habitflow api shutdown complete")
}
