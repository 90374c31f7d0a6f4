// Package main runs the background notification worker (email delivery and reminders).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reservar-app/backend/config"
	"github.com/reservar-app/backend/internal/notifications"
	"github.com/reservar-app/backend/internal/reservations"
	"github.com/reservar-app/backend/internal/tenants"
	"github.com/reservar-app/backend/internal/worker"
	"github.com/reservar-app/backend/pkg/database"
	"github.com/reservar-app/backend/pkg/queue"
	"github.com/reservar-app/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	if cfg.Email.SMTPHost == "" {
		logger.Fatal("SMTP_HOST is required for the worker")
	}

	reservationRepo := reservations.NewRepository(pool, cfg.Booking)
	tenantRepo := tenants.NewRepository(pool)
	emailLogRepo := notifications.NewRepository(pool)
	sender := notifications.NewSMTPSender(cfg.Email)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	processor := worker.NewEmailProcessor(jobQueue, reservationRepo, tenantRepo, emailLogRepo, sender, cfg.Email.FrontendURL, logger)
	reminders := worker.NewReminderScheduler(jobQueue, reservationRepo, 15*time.Minute, 24*time.Hour, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go reminders.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
