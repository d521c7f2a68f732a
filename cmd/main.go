package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gullrabia/Chat-app/internal/auth"
	"github.com/gullrabia/Chat-app/internal/cache"
	"github.com/gullrabia/Chat-app/internal/config"
	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/handler"
	"github.com/gullrabia/Chat-app/internal/hub"
	"github.com/gullrabia/Chat-app/internal/kafka"
	"github.com/gullrabia/Chat-app/internal/middleware"
	"github.com/gullrabia/Chat-app/internal/presence"
	"github.com/gullrabia/Chat-app/internal/repository"
	"github.com/gullrabia/Chat-app/internal/service"
	"github.com/gullrabia/Chat-app/pkg/database"
	"github.com/gullrabia/Chat-app/pkg/jwt"
	"github.com/gullrabia/Chat-app/pkg/log"
	"github.com/gullrabia/Chat-app/pkg/response"
	"github.com/gullrabia/Chat-app/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.UserModel{}, &domain.MessageModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	store, err := newStorage(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise storage")
	}

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenTTL, cfg.JWT.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise token manager")
	}

	// Repositories, optionally behind the Redis read-through cache. The
	// cache mainly absorbs the per-request user lookup the auth middleware
	// and the websocket handshake both do.
	var userRepo repository.UserRepository = repository.NewGormUserRepository(db)
	var userCache *cache.RedisUserCache
	if cfg.Redis.Enabled {
		userCache, err = cache.NewRedisUserCache(cfg.Redis, "chat-app")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		userRepo = cache.NewCachedUserRepository(userRepo, userCache, cfg.Redis.CacheTTL)
		logger.Info().Str("address", cfg.Redis.Address).Msg("user cache enabled")
	}
	messageRepo := repository.NewGormMessageRepository(db)

	var producer kafka.MessageProducer = kafka.NopProducer{}
	if cfg.Kafka.Enabled {
		cp, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to kafka")
		}
		producer = cp
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("message stream enabled")
	}

	validator := auth.NewValidator(tokens, userRepo)
	userService := service.NewUserService(userRepo, tokens, store)
	messageService := service.NewMessageService(messageRepo, userRepo, store, producer)

	table := presence.NewTable()
	relay := hub.NewHub(table)

	// Expired revocation entries are pruned in the background.
	revocationDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tokens.CleanupRevocations()
			case <-revocationDone:
				return
			}
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(logger))

	requireAuth := middleware.RequireAuth(validator)

	router.GET("/api/status", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is live")
	})

	handler.NewAuthHandler(userService).RegisterRoutes(router, requireAuth)
	handler.NewMessageHandler(messageService).RegisterRoutes(router, requireAuth)
	handler.NewWSHandler(relay, validator, cfg.WebSocket).RegisterRoutes(router)

	if cfg.Storage.Driver == "local" {
		router.Static(cfg.Storage.Local.PublicURL, cfg.Storage.Local.BaseDir)
	}

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	close(revocationDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	if err := producer.Close(); err != nil {
		logger.Warn().Err(err).Msg("producer close failed")
	}
	if userCache != nil {
		if err := userCache.Close(); err != nil {
			logger.Warn().Err(err).Msg("cache close failed")
		}
	}

	logger.Info().Msg("server stopped")
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3Storage(ctx, cfg.Storage.S3)
	case "local":
		return storage.NewLocalStorage(cfg.Storage.Local.BaseDir, cfg.Storage.Local.PublicURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
