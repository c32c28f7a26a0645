package config

import (
	"time"

	"github.com/spf13/viper"
)

// ResilienceConfig содержит настройки для механизмов отказоустойчивости
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Retry          RetryConfig          `mapstructure:"retry"`
	// DatabaseTimeout таймаут одной операции с PostgreSQL
	DatabaseTimeout time.Duration `mapstructure:"database_timeout"`
	// RedisTimeout таймаут одной операции с Redis
	RedisTimeout time.Duration `mapstructure:"redis_timeout"`
}

// CircuitBreakerConfig настройки circuit breaker
type CircuitBreakerConfig struct {
	// FailureThreshold количество ошибок, после которого circuit breaker откроется
	FailureThreshold int `mapstructure:"failure_threshold"`
	// ResetTimeout время, через которое circuit breaker перейдет в полуоткрытое состояние
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

// RetryConfig настройки повторных попыток для операций чтения
type RetryConfig struct {
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	BackoffFactor  float64       `mapstructure:"backoff_factor"`
	// Jitter доля случайного отклонения от задержки
	Jitter float64 `mapstructure:"jitter"`
}

// DefaultResilienceConfig возвращает конфигурацию отказоустойчивости по умолчанию
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries:     2,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			BackoffFactor:  2.0,
			Jitter:         0.2,
		},
		DatabaseTimeout: 3 * time.Second,
		RedisTimeout:    1 * time.Second,
	}
}

func setResilienceDefaults(v *viper.Viper) {
	d := DefaultResilienceConfig()

	v.SetDefault("resilience.circuit_breaker.failure_threshold", d.CircuitBreaker.FailureThreshold)
	v.SetDefault("resilience.circuit_breaker.reset_timeout", d.CircuitBreaker.ResetTimeout)
	v.SetDefault("resilience.retry.max_retries", d.Retry.MaxRetries)
	v.SetDefault("resilience.retry.initial_backoff", d.Retry.InitialBackoff)
	v.SetDefault("resilience.retry.max_backoff", d.Retry.MaxBackoff)
	v.SetDefault("resilience.retry.backoff_factor", d.Retry.BackoffFactor)
	v.SetDefault("resilience.retry.jitter", d.Retry.Jitter)
	v.SetDefault("resilience.database_timeout", d.DatabaseTimeout)
	v.SetDefault("resilience.redis_timeout", d.RedisTimeout)
}
