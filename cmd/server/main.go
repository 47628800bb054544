package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rahul3988/updnefol-backend/internal/cache"
	"github.com/rahul3988/updnefol-backend/internal/config"
	"github.com/rahul3988/updnefol-backend/internal/db"
	"github.com/rahul3988/updnefol-backend/internal/delivery"
	"github.com/rahul3988/updnefol-backend/internal/handlers"
	"github.com/rahul3988/updnefol-backend/internal/logger"
	"github.com/rahul3988/updnefol-backend/internal/payment"
	"github.com/rahul3988/updnefol-backend/internal/repository"
	"github.com/rahul3988/updnefol-backend/internal/service"
	"github.com/rahul3988/updnefol-backend/internal/worker"
)

func main() {
	// 1. Configuration and logging
	cfg := config.LoadConfig()
	log := logger.New(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	// 2. Backing stores
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// 3. Repositories
	userRepo := repository.NewUserRepository(pool)
	credRepo := repository.NewCredentialRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	jobRepo := repository.NewJobRepository(pool)

	// 4. Delivery adapters and services
	emailSender := delivery.NewEmailSender(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	whatsappSender := delivery.NewWhatsAppSender(
		cfg.WhatsAppBaseURL, cfg.WhatsAppToken, cfg.WhatsAppPhoneID)

	notifier := service.NewNotificationService(notificationRepo)
	limiter := cache.NewOTPLimiter(rdb)

	authService := service.NewAuthService(userRepo, credRepo, limiter, notifier, cfg.JWTSecret, log)
	otpService := service.NewOTPService(userRepo, credRepo, limiter, notifier, cfg.JWTSecret, log)
	paymentService := service.NewPaymentService(
		orderRepo,
		payment.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret,
		log)
	syncService := service.NewSyncService(jobRepo, credRepo, notificationRepo, log)

	// 5. Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	handlers.NewHealthHandler(pool, rdb).RegisterRoutes(router)
	handlers.NewAuthHandler(authService, cfg.JWTSecret).RegisterRoutes(router)
	handlers.NewOTPHandler(otpService).RegisterRoutes(router)
	handlers.NewPaymentHandler(paymentService).RegisterRoutes(router)
	handlers.NewAdminHandler(syncService).RegisterRoutes(router)

	// 6. Outbox dispatcher
	workerCtx, stopWorker := context.WithCancel(ctx)
	outbox := worker.NewOutbox(notificationRepo, emailSender, whatsappSender, cfg.OutboxInterval(), log)
	go outbox.Run(workerCtx)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
