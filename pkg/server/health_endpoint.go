package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Статусы зависимостей
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDegraded = "degraded"
	StatusUnknown  = "unknown"
)

// HealthCheckerInterface проверка доступности хранилищ
type HealthCheckerInterface interface {
	IsDatabaseHealthy(ctx context.Context) bool
	IsRedisHealthy(ctx context.Context) bool
}

// HealthCheck хранит последний известный статус зависимостей и отдает его по HTTP.
// Без PostgreSQL сервис не готов, без Redis работает в деградированном режиме.
type HealthCheck struct {
	checker  HealthCheckerInterface
	logger   *zap.Logger
	version  string
	interval time.Duration
	now      func() time.Time

	statusMutex sync.RWMutex
	postgres    string
	redis       string
	checkedAt   time.Time
}

// HealthResponse представляет ответ эндпоинта проверки здоровья
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
	CheckedAt time.Time         `json:"checked_at"`
	Version   string            `json:"version"`
}

// NewHealthCheck создает новый сервис проверки здоровья
func NewHealthCheck(checker HealthCheckerInterface, logger *zap.Logger, version string) *HealthCheck {
	return &HealthCheck{
		checker:  checker,
		logger:   logger,
		version:  version,
		interval: 10 * time.Second,
		now:      time.Now,
		postgres: StatusUnknown,
		redis:    StatusUnknown,
	}
}

// Run проверяет зависимости сразу и затем с заданным интервалом до отмены контекста
func (h *HealthCheck) Run(ctx context.Context) {
	h.CheckNow(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// CheckNow проверяет зависимости и обновляет статусы
func (h *HealthCheck) CheckNow(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	pgStatus := StatusUp
	if !h.checker.IsDatabaseHealthy(ctx) {
		pgStatus = StatusDown
		h.logger.Warn("PostgreSQL health check failed")
	}

	redisStatus := StatusUp
	if !h.checker.IsRedisHealthy(ctx) {
		redisStatus = StatusDegraded
		h.logger.Warn("Redis health check failed")
	}

	h.statusMutex.Lock()
	h.postgres = pgStatus
	h.redis = redisStatus
	h.checkedAt = h.now()
	h.statusMutex.Unlock()
}

// Routes регистрирует эндпоинты проверки здоровья
func (h *HealthCheck) Routes(r chi.Router) {
	r.Get("/health", h.healthHandler)
	r.Get("/health/live", h.livenessHandler)
	r.Get("/health/ready", h.readinessHandler)
}

// NewOpsRouter создает HTTP роутер служебных эндпоинтов: проверки здоровья и метрики Prometheus
func NewOpsRouter(health *HealthCheck, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return LoggingMiddleware(logger, next)
	})

	health.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// NewOpsServer создает HTTP сервер служебных эндпоинтов
func NewOpsServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (h *HealthCheck) livenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusUp})
}

func (h *HealthCheck) readinessHandler(w http.ResponseWriter, r *http.Request) {
	h.statusMutex.RLock()
	pgStatus := h.postgres
	h.statusMutex.RUnlock()

	if pgStatus != StatusUp {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  StatusDown,
			"message": "PostgreSQL is not available",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": StatusUp})
}

func (h *HealthCheck) healthHandler(w http.ResponseWriter, r *http.Request) {
	h.statusMutex.RLock()
	response := HealthResponse{
		Status: StatusUp,
		Services: map[string]string{
			"service":  StatusUp,
			"postgres": h.postgres,
			"redis":    h.redis,
		},
		Timestamp: h.now(),
		CheckedAt: h.checkedAt,
		Version:   h.version,
	}
	h.statusMutex.RUnlock()

	code := http.StatusOK
	if response.Services["postgres"] != StatusUp {
		response.Status = StatusDown
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, response)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
