package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dropcars/internal/config"
	"dropcars/internal/handlers"
	"dropcars/internal/middleware"
	"dropcars/internal/repositories/mongodb"
	"dropcars/internal/services"
	"dropcars/internal/session"
	"dropcars/pkg/cache"
	"dropcars/pkg/database"
	"dropcars/pkg/logger"
	"dropcars/pkg/payment"
	"dropcars/pkg/sms"
	"dropcars/pkg/storage"
	"dropcars/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	var redisCache *cache.RedisCache
	var sessions session.Store = session.NewMemoryStore()
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(&cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		sessions = session.NewRedisStore(redisCache, cfg.Security.CredentialTTL)
	}

	// Session-expiry broadcast. Every authenticated surface shares this bus;
	// the logging observer gives operators a trace of forced re-logins.
	bus := session.NewBus()
	bus.Subscribe(session.ObserverFunc(func(role session.Role, reason string) {
		appLogger.WithField("role", string(role)).WithField("reason", reason).Info("Session expired")
	}))

	orderRepo := mongodb.NewOrderRepository(db.Database)
	assignmentRepo := mongodb.NewAssignmentRepository(db.Database)
	driverRepo := mongodb.NewDriverRepository(db.Database)
	carRepo := mongodb.NewCarRepository(db.Database)
	walletRepo := mongodb.NewWalletRepository(db.Database)
	ownerRepo := mongodb.NewOwnerRepository(db.Database)

	var gateway payment.TopupGateway
	if cfg.Payment.Enabled {
		gateway = payment.NewRazorpayGateway(cfg.Payment.RazorpayKeyID, cfg.Payment.RazorpayKeySecret)
	}

	var smsSender sms.Sender
	if cfg.SMS.Enabled {
		smsSender = sms.NewTwilioSender(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioFromNumber)
	}

	evidenceStore, err := storage.NewS3Storage(cfg.Storage.Region, cfg.Storage.Bucket)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize evidence storage")
	}

	authService := services.NewAuthService(ownerRepo, driverRepo, sessions, cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, appLogger)
	orderService := services.NewOrderService(orderRepo, appLogger)
	resourceService := services.NewResourceService(driverRepo, carRepo, assignmentRepo, appLogger)
	walletService := services.NewWalletService(walletRepo, gateway, redisCache, cfg.Wallet.PreventOverdraft, appLogger)
	assignmentService := services.NewAssignmentService(
		orderRepo, assignmentRepo, driverRepo, carRepo,
		walletService, smsSender,
		cfg.Wallet.AcceptTTL, cfg.Wallet.CommissionAmount,
		appLogger,
	)

	resolver := session.NewResolver(sessions, services.NewProfileLoader(ownerRepo, driverRepo), appLogger)

	h := &routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Session:    handlers.NewSessionHandler(resolver),
		Order:      handlers.NewOrderHandler(orderService),
		Assignment: handlers.NewAssignmentHandler(assignmentService),
		Resource:   handlers.NewResourceHandler(resourceService),
		Wallet:     handlers.NewWalletHandler(walletService),
		Evidence:   handlers.NewEvidenceHandler(evidenceStore),
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	routes.Setup(router, h, authService, sessions, bus)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("addr", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}
