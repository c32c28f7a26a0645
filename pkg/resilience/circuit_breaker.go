package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"NicoQuitService/pkg/apperrors"

	"go.uber.org/zap"
)

// CircuitState представляет состояние circuit breaker
type CircuitState int

const (
	// CircuitClosed нормальное состояние, запросы проходят
	CircuitClosed CircuitState = iota
	// CircuitOpen запросы отклоняются до истечения таймаута сброса
	CircuitOpen
	// CircuitHalfOpen пропускается один пробный запрос
	CircuitHalfOpen
)

// String возвращает строковое представление состояния
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerSettings настройки circuit breaker
type BreakerSettings struct {
	Name             string
	FailureThreshold int
	ResetTimeout     time.Duration
	// IgnoredErrors не считаются отказами (например, "запись не найдена")
	IgnoredErrors []error
	// OnStateChange вызывается при каждой смене состояния
	OnStateChange func(name string, from, to CircuitState)
}

// CircuitBreaker защищает хранилище от лавины запросов во время отказа
type CircuitBreaker struct {
	settings BreakerSettings
	logger   *zap.Logger
	now      func() time.Time

	mutex           sync.Mutex
	state           CircuitState
	failureCount    int
	lastStateChange time.Time
	probeInFlight   bool
}

// NewCircuitBreaker создает новый экземпляр CircuitBreaker
func NewCircuitBreaker(settings BreakerSettings, logger *zap.Logger) *CircuitBreaker {
	if settings.FailureThreshold < 1 {
		settings.FailureThreshold = 1
	}

	return &CircuitBreaker{
		settings:        settings,
		logger:          logger,
		now:             time.Now,
		state:           CircuitClosed,
		lastStateChange: time.Now(),
	}
}

// Execute выполняет функцию с учетом состояния circuit breaker.
// При открытом состоянии возвращает apperrors.ErrCircuitOpen, не вызывая fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	probe, ok := cb.acquire(operation)
	if !ok {
		cb.logger.Warn("Circuit breaker rejected operation",
			zap.String("breaker", cb.settings.Name),
			zap.String("operation", operation))
		return apperrors.ErrCircuitOpen
	}

	err := fn(ctx)
	cb.record(operation, probe, err)

	return err
}

// GetState возвращает текущее состояние circuit breaker
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// acquire решает, можно ли выполнить запрос, и переводит открытый breaker в полуоткрытый по таймауту
func (cb *CircuitBreaker) acquire(operation string) (probe bool, ok bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case CircuitClosed:
		return false, true
	case CircuitOpen:
		if cb.now().Sub(cb.lastStateChange) < cb.settings.ResetTimeout {
			return false, false
		}
		cb.transition(operation, CircuitHalfOpen)
		cb.probeInFlight = true
		return true, true
	case CircuitHalfOpen:
		if cb.probeInFlight {
			return false, false
		}
		cb.probeInFlight = true
		return true, true
	}
	return false, false
}

// record учитывает результат выполнения
func (cb *CircuitBreaker) record(operation string, probe bool, err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if probe {
		cb.probeInFlight = false
	}

	failed := err != nil && !cb.isIgnored(err)

	switch cb.state {
	case CircuitClosed:
		if !failed {
			cb.failureCount = 0
			return
		}
		cb.failureCount++
		if cb.failureCount >= cb.settings.FailureThreshold {
			cb.transition(operation, CircuitOpen)
		}
	case CircuitHalfOpen:
		if !probe {
			return
		}
		if failed {
			cb.transition(operation, CircuitOpen)
		} else {
			cb.transition(operation, CircuitClosed)
		}
	}
}

func (cb *CircuitBreaker) isIgnored(err error) bool {
	// Отмена запроса клиентом не говорит о состоянии хранилища
	if errors.Is(err, context.Canceled) {
		return true
	}
	for _, ignored := range cb.settings.IgnoredErrors {
		if errors.Is(err, ignored) {
			return true
		}
	}
	return false
}

// transition меняет состояние. Вызывается под мьютексом.
func (cb *CircuitBreaker) transition(operation string, to CircuitState) {
	from := cb.state
	if from == to {
		return
	}

	cb.state = to
	cb.lastStateChange = cb.now()
	if to == CircuitClosed {
		cb.failureCount = 0
	}

	fields := []zap.Field{
		zap.String("breaker", cb.settings.Name),
		zap.String("operation", operation),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	}
	if to == CircuitOpen {
		cb.logger.Warn("Circuit breaker opened", append(fields,
			zap.Int("failures", cb.failureCount),
			zap.Duration("reset_timeout", cb.settings.ResetTimeout))...)
	} else {
		cb.logger.Info("Circuit breaker state changed", fields...)
	}

	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, from, to)
	}
}
