package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardioalert/internal/config"
	"cardioalert/internal/database"
	"cardioalert/internal/handler"
	"cardioalert/internal/lock"
	"cardioalert/internal/metrics"
	"cardioalert/internal/middleware"
	"cardioalert/internal/notification"
	"cardioalert/internal/payment"
	"cardioalert/internal/repository"
	"cardioalert/internal/service"
	"cardioalert/pkg/logger"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded successfully",
		zap.Bool("payment_live", cfg.PaymentLive()),
		zap.Bool("notification_live", cfg.NotificationLive()),
	)

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize database connection
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.SeedHospitals(ctx, db); err != nil {
		logger.Warn("Failed to seed hospitals", zap.Error(err))
	}

	// 4. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	hospitalRepo := repository.NewHospitalRepo(db)
	staffRepo := repository.NewHospitalStaffRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	// 5. Collaborators
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, "cardioalert:")
		logger.Info("Using redis dispatch lock", zap.String("addr", cfg.Redis.Addr))
	}
	gateway := payment.NewGateway(cfg.Payment)
	notifier := notification.NewNotifier(cfg.Notification)

	// 6. Initialize services
	tiers := service.NewTierPolicy(cfg.Pricing)
	authService := service.NewAuthService(userRepo, auditRepo)
	hospitalService := service.NewHospitalService(hospitalRepo, staffRepo, userRepo, auditRepo)
	dispatchService := service.NewDispatchService(notifier, cfg.Dispatch.SendTimeout, cfg.Dispatch.Concurrency)
	alertService := service.NewAlertService(
		alertRepo, paymentRepo, auditRepo, hospitalService, tiers, dispatchService, locker,
		cfg.Dispatch.RadiusKm, cfg.Dispatch.ClaimTTL,
	)
	paymentService := service.NewPaymentService(
		paymentRepo, alertRepo, auditRepo, gateway, alertService, hospitalService, tiers, cfg.Dispatch.RadiusKm,
	)
	workerService := service.NewWorkerService(alertRepo, cfg.Dispatch.ClaimTTL, cfg.Dispatch.ReaperInterval)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.Warn("Failed to ensure admin account", zap.Error(err))
		}
	}

	// 7. Start background workers in goroutines
	go workerService.Start(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				limiter.Cleanup(now)
			}
		}
	}()

	// 8. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// registered after /metrics so scrapes are never throttled
	r.Use(limiter.Middleware())

	// 9. Register handlers and routes
	handler.RegisterRoutes(r, handler.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Hospital: handler.NewHospitalHandler(hospitalService),
		Payment:  handler.NewPaymentHandler(paymentService),
		Alert:    handler.NewAlertHandler(alertService),
		Access:   middleware.NewAccessControlMiddleware(hospitalService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 10. Setup graceful shutdown
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Cancel background worker context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
