package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vrpoint/giftcert-bot/internal/auth"
	"github.com/vrpoint/giftcert-bot/internal/engine"
	"github.com/vrpoint/giftcert-bot/internal/giftcert"
	"github.com/vrpoint/giftcert-bot/internal/session"
	"github.com/vrpoint/giftcert-bot/internal/telegram"
	"github.com/vrpoint/giftcert-bot/pkg/config"
	"github.com/vrpoint/giftcert-bot/pkg/logger"
	"github.com/vrpoint/giftcert-bot/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Crash reporting (optional)
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.Warn("Sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Session store: Redis when configured, in-process memory otherwise
	var store session.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient.Client, cfg.Redis.SessionTTL)
		logger.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
	} else {
		store = session.NewMemoryStore()
		logger.Info("Using in-memory session store")
	}

	// Wire the engine
	api := giftcert.NewClient(&cfg.Backend)
	gate := auth.NewGate(cfg.Telegram.AdminIDs)
	eng := engine.New(gate, api, store, cfg.SheetURL)

	bot, err := telegram.New(cfg.Telegram.BotToken, eng)
	if err != nil {
		logger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	logger.Info("Bot authorized", zap.String("username", bot.Username()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Operational HTTP server: health check and metrics
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "giftcert-bot"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	opsServer := &http.Server{
		Addr:    ":" + cfg.Ops.Port,
		Handler: router,
	}
	go func() {
		logger.Info("Ops server starting", zap.String("port", cfg.Ops.Port))
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ops server failed", zap.Error(err))
		}
	}()

	// Long polling blocks until the context is cancelled
	bot.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops server shutdown failed", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}
