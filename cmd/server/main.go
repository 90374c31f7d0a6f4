// Package main runs the reservation platform HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reservar-app/backend/config"
	"github.com/reservar-app/backend/internal/auth"
	"github.com/reservar-app/backend/internal/middleware"
	"github.com/reservar-app/backend/internal/notifications"
	"github.com/reservar-app/backend/internal/onboarding"
	"github.com/reservar-app/backend/internal/realtime"
	"github.com/reservar-app/backend/internal/reservations"
	"github.com/reservar-app/backend/internal/schedules"
	"github.com/reservar-app/backend/internal/spaces"
	"github.com/reservar-app/backend/internal/superadmin"
	"github.com/reservar-app/backend/internal/tenants"
	"github.com/reservar-app/backend/pkg/database"
	"github.com/reservar-app/backend/pkg/queue"
	"github.com/reservar-app/backend/pkg/redis"
	"github.com/reservar-app/backend/pkg/response"
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

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Tenants and onboarding
	tenantRepo := tenants.NewRepository(pool)
	tenantHandler := tenants.NewHandler(tenantRepo, cfg.Admin.RequireInviteToken, logger)
	onboardingRepo := onboarding.NewRepository(pool)
	onboardingHandler := onboarding.NewHandler(onboardingRepo, cfg.Admin.Secret, logger)

	// Spaces and resources
	spaceRepo := spaces.NewRepository(pool)
	spaceHandler := spaces.NewHandler(spaceRepo, logger)

	// Schedules
	scheduleRepo := schedules.NewRepository(pool)
	scheduleHandler := schedules.NewHandler(scheduleRepo, spaceRepo, logger)

	// Reservations
	reservationRepo := reservations.NewRepository(pool, cfg.Booking)
	availabilitySvc := reservations.NewAvailabilityService(tenantRepo, spaceRepo, scheduleRepo, reservationRepo, cfg.Booking, logger)
	notifier := notifications.NewService(jobQueue, logger)
	reservationHandler := reservations.NewHandler(reservationRepo, availabilitySvc, notifier, hub, logger)

	// Email logs
	emailLogRepo := notifications.NewRepository(pool)
	emailLogHandler := notifications.NewHandler(emailLogRepo, notifier, logger)

	// Super admin
	superAdminRepo := superadmin.NewRepository(pool)
	superAdminHandler := superadmin.NewHandler(superAdminRepo, tenantRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")

	// Public: tenant discovery and onboarding
	api.POST("/tenants", tenantHandler.Create)
	api.GET("/tenants", tenantHandler.List)
	api.GET("/tenants/slug/:slug", tenantHandler.GetBySlug)
	api.GET("/tenants/slug/:slug/schedule-range", tenantHandler.GetScheduleRange)
	api.GET("/onboarding-tokens/:token/validate", onboardingHandler.Validate)
	api.POST("/onboarding-tokens", onboardingHandler.Create)

	// Public: per-tenant booking surface
	tenant := api.Group("/tenants/:tenantId")
	{
		tenant.GET("/spaces", spaceHandler.ListPublic)
		tenant.GET("/resources", spaceHandler.ListResourcesPublic)
		tenant.GET("/availability", reservationHandler.GetAvailability)
		tenant.GET("/reservations/day", reservationHandler.GetDayReservations)
		tenant.POST("/reservations", reservationHandler.Create)
	}

	// Auth (public)
	api.POST("/auth/login", authHandler.Login)

	// Tenant admin (JWT required)
	admin := api.Group("/admin")
	admin.Use(middleware.JWT(jwtService), middleware.RequireRole("admin", "super_admin"))
	{
		admin.GET("/me", authHandler.Me)
		admin.PATCH("/tenant", tenantHandler.Update)

		admin.POST("/spaces", spaceHandler.Create)
		admin.GET("/spaces", spaceHandler.List)
		admin.PATCH("/spaces/:id", spaceHandler.Update)
		admin.DELETE("/spaces/:id", spaceHandler.Delete)
		admin.POST("/resources", spaceHandler.CreateResource)
		admin.GET("/resources", spaceHandler.ListResources)
		admin.DELETE("/resources/:id", spaceHandler.DeleteResource)

		admin.POST("/schedules", scheduleHandler.Create)
		admin.GET("/schedules", scheduleHandler.List)
		admin.PATCH("/schedules/:id", scheduleHandler.Update)
		admin.DELETE("/schedules/:id", scheduleHandler.Delete)

		admin.GET("/reservations", reservationHandler.List)
		admin.GET("/reservations/:id", reservationHandler.GetByID)
		admin.POST("/reservations/:id/cancel", reservationHandler.Cancel)
		admin.DELETE("/reservations/:id", reservationHandler.Remove)

		admin.GET("/emails", emailLogHandler.List)
		admin.POST("/emails/:id/resend", emailLogHandler.Resend)
	}

	// Super admin (platform-wide)
	super := api.Group("/super-admin")
	super.Use(middleware.JWT(jwtService), middleware.RequireRole("super_admin"))
	{
		super.GET("/stats", superAdminHandler.Stats)
		super.GET("/tenants", superAdminHandler.ListTenants)
		super.GET("/tenants/:id", superAdminHandler.GetTenant)
		super.POST("/tenants/:id/activate", superAdminHandler.Activate)
		super.POST("/tenants/:id/deactivate", superAdminHandler.Deactivate)
		super.DELETE("/tenants/:id", tenantHandler.Delete)
	}

	// WebSocket reservation board (public, per tenant)
	checkTenant := func(ctx context.Context, tenantID uuid.UUID) error {
		_, err := tenantRepo.GetByID(ctx, tenantID)
		return err
	}
	router.GET("/ws/:tenantId", realtime.ServeWs(hub, logger, checkTenant))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
