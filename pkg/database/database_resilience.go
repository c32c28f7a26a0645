package database

import (
	"context"
	"errors"
	"time"

	"NicoQuitService/config"
	"NicoQuitService/pkg/apperrors"
	"NicoQuitService/pkg/resilience"
	"NicoQuitService/pkg/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthChecker общий для всех репозиториев доступ к PostgreSQL и Redis через circuit breaker,
// таймауты, повторные попытки для чтения и метрики
type HealthChecker struct {
	db           *gorm.DB
	redisClient  *redis.Client
	logger       *zap.Logger
	cfg          config.ResilienceConfig
	pgCircuit    *resilience.CircuitBreaker
	redisCircuit *resilience.CircuitBreaker
}

// NewHealthChecker создает проверку состояния хранилищ с общими circuit breaker'ами
func NewHealthChecker(db *gorm.DB, redisClient *redis.Client, cfg config.ResilienceConfig, logger *zap.Logger) *HealthChecker {
	breaker := func(name string) *resilience.CircuitBreaker {
		return resilience.NewCircuitBreaker(resilience.BreakerSettings{
			Name:             name,
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
			ResetTimeout:     cfg.CircuitBreaker.ResetTimeout,
			IgnoredErrors:    apperrors.IgnoredErrors,
			OnStateChange:    server.RecordCircuitBreakerStateChange,
		}, logger)
	}

	return &HealthChecker{
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		cfg:          cfg,
		pgCircuit:    breaker("postgres"),
		redisCircuit: breaker("redis"),
	}
}

// IsDatabaseHealthy проверяет здоровье PostgreSQL
func (c *HealthChecker) IsDatabaseHealthy(ctx context.Context) bool {
	var result int
	err := c.pgCircuit.Execute(ctx, "postgres_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	})

	return err == nil && result == 1
}

// IsRedisHealthy проверяет здоровье Redis
func (c *HealthChecker) IsRedisHealthy(ctx context.Context) bool {
	err := c.redisCircuit.Execute(ctx, "redis_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		return c.redisClient.Ping(ctx).Err()
	})

	return err == nil
}

// WithDatabaseResilience выполняет запись в PostgreSQL без повторов
func (c *HealthChecker) WithDatabaseResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	startTime := time.Now()

	err := c.pgCircuit.Execute(ctx, operation, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.DatabaseTimeout)
		defer cancel()
		return fn(ctx)
	})

	c.observe("Database", operation, err)
	server.RecordDBOperation(operation, time.Since(startTime), metricErr(err))

	return err
}

// WithDatabaseRead выполняет идемпотентное чтение из PostgreSQL с повторными попытками
func (c *HealthChecker) WithDatabaseRead(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	options := resilience.RetryOptions{
		MaxRetries:     c.cfg.Retry.MaxRetries,
		InitialBackoff: c.cfg.Retry.InitialBackoff,
		MaxBackoff:     c.cfg.Retry.MaxBackoff,
		BackoffFactor:  c.cfg.Retry.BackoffFactor,
		Jitter:         c.cfg.Retry.Jitter,
	}

	return resilience.WithRetry(ctx, c.logger, operation, options, func(ctx context.Context) error {
		return c.WithDatabaseResilience(ctx, operation, fn)
	})
}

// WithRedisResilience выполняет операцию в Redis с механизмами отказоустойчивости
func (c *HealthChecker) WithRedisResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	startTime := time.Now()

	err := c.redisCircuit.Execute(ctx, operation, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.RedisTimeout)
		defer cancel()
		return fn(ctx)
	})

	c.observe("Redis", operation, err)
	server.RecordCacheOperation(operation, time.Since(startTime), metricErr(err))

	return err
}

// observe логирует отказы хранилища. Бизнес-ошибки и промахи кэша пишутся только в debug.
func (c *HealthChecker) observe(store, operation string, err error) {
	switch {
	case err == nil:
	case apperrors.IsIgnored(err):
		c.logger.Debug(store+" operation returned business error",
			zap.String("operation", operation),
			zap.Error(err))
	case errors.Is(err, apperrors.ErrCircuitOpen):
	case errors.Is(err, context.DeadlineExceeded):
		c.logger.Error(store+" operation timed out", zap.String("operation", operation))
	default:
		c.logger.Error(store+" operation failed",
			zap.String("operation", operation),
			zap.Error(err))
	}
}

// metricErr не считает бизнес-ошибки ошибками в метриках
func metricErr(err error) error {
	if apperrors.IsIgnored(err) {
		return nil
	}
	return err
}
