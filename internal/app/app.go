package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-workforce/internal/config"
	"go-workforce/internal/database"
	"go-workforce/internal/health"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/middleware"
	"go-workforce/internal/observability"
	"go-workforce/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const idempotencyTTL = 24 * time.Hour

// Deps are the connections a router is built on. Redis and Outbox may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Outbox kafka.OutboxRepository
}

// BuildApp connects every dependency named by cfg and returns the HTTP router
// together with a cleanup hook for the server shutdown.
func BuildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(context.Context) error, error) {
	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.Otel, logger)
	if err != nil {
		return nil, nil, err
	}

	db, err := connectDatabase(cfg.DB, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connection established", zap.String("driver", cfg.DB.Driver))

	rdb, err := connectRedis(cfg.Redis, cfg.DB.MaxRetries, logger)
	if err != nil {
		return nil, nil, err
	}

	deps := Deps{DB: db, Redis: rdb}
	if cfg.Kafka.Broker != "" {
		deps.Outbox = kafka.NewOutboxRepository(db)
	} else {
		logger.Warn("kafka broker not configured, domain events are not recorded")
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := NewRouter(cfg, logger, deps)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func(ctx context.Context) error {
		var errs []error
		if rdb != nil {
			errs = append(errs, rdb.Close())
		}
		if sqlDB, err := db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
		errs = append(errs, shutdownTracing(ctx))
		return errors.Join(errs...)
	}

	return router, cleanup, nil
}

// NewRouter assembles the middleware chain and every module on top of deps.
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	metrics := observability.NewMetrics(metricsNamespace(cfg.App.Name))

	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.App.Name),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.ContextLogger(logger),
		metrics.Middleware(),
		middleware.AccessLog(logger),
	)
	if cfg.RateLimit.RPS > 0 {
		router.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst))
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	health.RegisterRoutes(router, health.NewHandler(cfg.App.Name, cfg.App.Version, deps.DB, deps.Redis))

	api := router.Group("/api")
	if err := registerModules(api, cfg.Auth, logger, deps); err != nil {
		return nil, err
	}
	return router, nil
}

func connectDatabase(cfg config.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		db, err = connection.OpenSQLite(cfg.SQLitePath)
	default:
		db, err = connection.ConnectGORMWithRetry(cfg.PostgresDSN(), cfg.MaxRetries, logger)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func connectRedis(cfg config.RedisConfig, maxRetries int, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		logger.Warn("redis not configured, caching and idempotency disabled")
		return nil, nil
	}

	rdb, err := connection.ConnectRedisWithRetry(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, maxRetries, logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

// metricsNamespace turns an app name into a valid prometheus namespace.
func metricsNamespace(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
