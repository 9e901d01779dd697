package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitflow/config"
	mqcontracts "habitflow/contracts/mq"
	"habitflow/internal/cache"
	"habitflow/internal/mqhandler"
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

const maxRetries = 3

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.Log)
	defer log.Sync()

	log.Info("Starting habitflow worker...")

	// Tracing
	shutdownTracing, err := otel.Init("habitflow-worker", cfg.Tracing, log)
	if err != nil {
		log.Fatal("OpenTelemetry initialization failed", zap.Error(err))
	}
	defer shutdownTracing()

	// Redis
	rdb, err := redis.NewRedisClient(cfg.Redis, log)
	if err != nil {
		log.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour, log)
	retryCounter := util.NewRetryCounter(rdb, time.Hour)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer dbConn.Close()

	// DLQ publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL, "habitflow-worker")
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	outboxRepo := outbox.NewRepository(dbConn, log)
	habitRepo := repository.NewHabitRepository(dbConn, outboxRepo, log)
	logRepo := repository.NewLogRepository(dbConn, outboxRepo, log)

	snapshotCache := cache.NewSnapshotCache(rdb, cfg.Analytics.CacheTTL, circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), log)
	habitService := service.NewHabitService(habitRepo, logRepo, snapshotCache, nil, cfg.Analytics.LogWindow, log)

	refreshHandler := mqhandler.NewSnapshotRefreshHandler(habitService, publisher, deduper, retryCounter, maxRetries, log)

	router := mq.NewRouter(log)
	router.Register(refreshHandler.Handle, mqcontracts.HabitRoutingKeys...)

	log.Info("Init consumer", zap.String("queue", mqhandler.SnapshotRefreshQueue))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, mqhandler.SnapshotRefreshQueue, router.RoutingKeys(), log)
	if err != nil {
		log.Fatal("Snapshot consumer init failed", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(router.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.StartConsuming(ctx); err != nil && ctx.Err() == nil {
			log.Fatal("Snapshot consumer crashed", zap.Error(err))
		}
	}()

	log.Info("Worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down habitflow worker...")
}
