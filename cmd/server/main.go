// Package main runs the workshop payments and registrations HTTP server.
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
	"go.uber.org/zap/zapcore"

	"github.com/xourcebase/backend/config"
	"github.com/xourcebase/backend/internal/auth"
	"github.com/xourcebase/backend/internal/middleware"
	"github.com/xourcebase/backend/internal/models"
	"github.com/xourcebase/backend/internal/notifications"
	"github.com/xourcebase/backend/internal/payments"
	"github.com/xourcebase/backend/internal/registrations"
	"github.com/xourcebase/backend/pkg/database"
	redispkg "github.com/xourcebase/backend/pkg/redis"
	"github.com/xourcebase/backend/pkg/response"
	"github.com/xourcebase/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis only backs webhook event dedup; the upsert keeps the system
	// correct without it.
	var dedup payments.EventDeduper
	if cfg.Redis.Addr != "" {
		rdb, err := redispkg.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			dedup = payments.NewRedisDeduper(rdb)
		}
	}

	var archive *storage.S3
	if cfg.AWS.ReceiptsBucket != "" {
		s3Cfg := storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			ReceiptsBucket:  cfg.AWS.ReceiptsBucket,
		}
		archive, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("receipt archive disabled", zap.Error(err))
		}
	}

	// Auth (admin dashboard)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	if err := auth.EnsureAdmin(ctx, authRepo, cfg.Admin.Email, cfg.Admin.Password, logger); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}

	// Payments
	gateway := payments.NewRazorpayGateway(cfg.Razorpay)
	paymentHandler := payments.NewHandler(gateway, logger)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	registrationHandler := registrations.NewHandler(registrationRepo, logger)
	webhookHandler := payments.NewWebhookHandler(gateway, registrationRepo, dedup, logger)

	// Notifications
	mailer := notifications.NewMailer(cfg.Email)
	whatsapp := notifications.NewWhatsAppClient(cfg.UltraMsg)
	notificationHandler := notifications.NewHandler(mailer, whatsapp, archive, cfg.Workshop, logger)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Checkout flow (public; called from the site)
	api := router.Group("/api")
	{
		api.POST("/payments/order", paymentHandler.CreateOrder)
		api.POST("/payments/verify", paymentHandler.VerifyPayment)
		api.POST("/notifications/receipt", notificationHandler.SendReceipt)
		api.POST("/notifications/whatsapp", notificationHandler.SendWhatsApp)
	}

	// Webhooks (no JWT; signature validated over the raw body in the handler)
	router.POST("/webhooks/razorpay", webhookHandler.Handle)

	// Admin (JWT required)
	admin := router.Group("/admin")
	admin.Use(middleware.JWT(jwtService), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/registrations", registrationHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
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
