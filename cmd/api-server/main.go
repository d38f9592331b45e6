package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Gsus07/tichat-push/database"
	"github.com/Gsus07/tichat-push/internal/config"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/handler"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/middleware"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/repository"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/service"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	// 2. Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// 3. Redis cache (optional, the API works without it)
	var cache repository.PreferencesCache
	if opts, err := redis.ParseURL(cfg.RedisURL); err == nil {
		if cfg.RedisPassword != "" {
			opts.Password = cfg.RedisPassword
		}
		cache = repository.NewPreferencesCache(redis.NewClient(opts), time.Duration(cfg.CacheTTL)*time.Second)
	} else {
		logger.Warn("invalid REDIS_URL, preferences cache disabled", "error", err)
	}

	// 4. Wire repositories, services and handlers
	tokenRepo := repository.NewPushTokenRepository(db)
	prefsRepo := repository.NewPreferencesRepository(db)
	eventRepo := repository.NewNotificationEventRepository(db)

	tokens := service.NewTokenService(tokenRepo)
	preferences := service.NewPreferencesService(prefsRepo, cache)
	tracking := service.NewTrackingService(eventRepo)

	var delivery service.DeliveryService
	if cfg.PushEnabled() {
		delivery = service.NewDeliveryService(tokenRepo, service.NewWebPushSender(), cfg, logger)
	} else {
		logger.Warn("VAPID keys not configured, push delivery disabled")
	}

	notifications := handler.NewNotificationHandler(tokens, preferences, tracking, delivery)

	// 5. Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "notification API is alive and database connected",
		})
	})

	authorized := r.Group("/api/notifications")
	authorized.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notifications.RegisterRoutes(authorized)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("notification API listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
