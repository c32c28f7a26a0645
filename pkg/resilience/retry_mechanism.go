package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"NicoQuitService/pkg/apperrors"

	"go.uber.org/zap"
)

// RetryOptions настройки для механизма повторных попыток
type RetryOptions struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64
	// RetryableErrors ограничивает повторы перечисленными ошибками. Пустой список - повторять все,
	// кроме бизнес-ошибок и открытого circuit breaker.
	RetryableErrors []error
}

// DefaultRetryOptions возвращает настройки по умолчанию
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:     2,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
	}
}

// WithRetry выполняет функцию с повторными попытками при ошибках
func WithRetry(ctx context.Context, logger *zap.Logger, operation string, options RetryOptions, fn func(context.Context) error) error {
	var err error

	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retries",
					zap.String("operation", operation),
					zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isRetryable(err, options.RetryableErrors) {
			return err
		}

		if attempt >= options.MaxRetries {
			logger.Warn("All retry attempts failed",
				zap.String("operation", operation),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return err
		}

		backoff := calculateBackoff(attempt, options)
		logger.Debug("Retrying operation after error",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			logger.Warn("Context cancelled during retry",
				zap.String("operation", operation),
				zap.Error(ctx.Err()))
			return ctx.Err()
		}
	}
}

// isRetryable проверяет, нужно ли повторять операцию для данной ошибки
func isRetryable(err error, retryableErrors []error) bool {
	if apperrors.IsIgnored(err) ||
		errors.Is(err, apperrors.ErrCircuitOpen) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if len(retryableErrors) == 0 {
		return true
	}

	for _, retryableErr := range retryableErrors {
		if errors.Is(err, retryableErr) {
			return true
		}
	}

	return false
}

// calculateBackoff вычисляет задержку с экспоненциальным ростом и случайным отклонением
func calculateBackoff(attempt int, options RetryOptions) time.Duration {
	backoff := float64(options.InitialBackoff) * math.Pow(options.BackoffFactor, float64(attempt))

	if options.Jitter > 0 {
		backoff *= 1 + (rand.Float64()*2-1)*options.Jitter
	}

	return time.Duration(min(backoff, float64(options.MaxBackoff)))
}
