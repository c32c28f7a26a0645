package server

import (
	"context"
	"time"

	"NicoQuitService/pkg/resilience"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	// grpcRequestDuration измеряет длительность gRPC запросов
	grpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	grpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	dbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	dbOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	cacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	cacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)

	// circuitBreakerState отслеживает состояние circuit breaker
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "State of circuit breaker (0: closed, 1: half-open, 2: open)",
		},
		[]string{"name"},
	)

	// petEventsTotal действия с питомцем. applied=false - действие отклонено предусловиями
	petEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nico_pet_events_total",
			Help: "Total number of pet actions by outcome",
		},
		[]string{"event", "applied"},
	)

	checkinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nico_checkins_total",
			Help: "Total number of daily check-ins (first of the day or overwrite)",
		},
		[]string{"kind"},
	)

	crisisLogsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nico_crisis_logs_total",
			Help: "Total number of logged cravings and slips",
		},
		[]string{"type"},
	)

	communityActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nico_community_actions_total",
			Help: "Total number of community posts, reactions and reports",
		},
		[]string{"action"},
	)

	achievementsUnlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nico_achievements_unlocked_total",
			Help: "Total number of unlocked achievements",
		},
	)
)

// MetricsUnaryInterceptor создает gRPC перехватчик для сбора метрик
func MetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		startTime := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err).String()
		grpcRequestDuration.WithLabelValues(info.FullMethod, code).Observe(time.Since(startTime).Seconds())
		grpcRequestsTotal.WithLabelValues(info.FullMethod, code).Inc()

		return resp, err
	}
}

// RecordDBOperation записывает метрики операции с базой данных
func RecordDBOperation(operation string, duration time.Duration, err error) {
	status := outcome(err)
	dbOperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	dbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCacheOperation записывает метрики операции с кэшем
func RecordCacheOperation(operation string, duration time.Duration, err error) {
	status := outcome(err)
	cacheOperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	cacheOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCircuitBreakerStateChange записывает изменение состояния circuit breaker.
// Подходит как BreakerSettings.OnStateChange.
func RecordCircuitBreakerStateChange(name string, _, to resilience.CircuitState) {
	value := 0.0
	switch to {
	case resilience.CircuitHalfOpen:
		value = 1
	case resilience.CircuitOpen:
		value = 2
	}
	circuitBreakerState.WithLabelValues(name).Set(value)
}

// RecordPetEvent учитывает действие с питомцем
func RecordPetEvent(event string, applied bool) {
	label := "false"
	if applied {
		label = "true"
	}
	petEventsTotal.WithLabelValues(event, label).Inc()
}

// RecordCheckin учитывает отметку дня
func RecordCheckin(firstOfDay bool) {
	kind := "overwrite"
	if firstOfDay {
		kind = "first"
	}
	checkinsTotal.WithLabelValues(kind).Inc()
}

// RecordCrisisLog учитывает кризисное событие
func RecordCrisisLog(crisisType string) {
	crisisLogsTotal.WithLabelValues(crisisType).Inc()
}

// RecordCommunityAction учитывает действие в сообществе
func RecordCommunityAction(action string) {
	communityActionsTotal.WithLabelValues(action).Inc()
}

// RecordAchievementsUnlocked учитывает открытые достижения
func RecordAchievementsUnlocked(count int) {
	if count > 0 {
		achievementsUnlockedTotal.Add(float64(count))
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
