package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"NicoQuitService/config"
	"NicoQuitService/pkg/apperrors"
	"NicoQuitService/pkg/resilience"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testResilienceConfig() config.ResilienceConfig {
	cfg := config.DefaultResilienceConfig()
	cfg.CircuitBreaker.FailureThreshold = 2
	cfg.Retry.MaxRetries = 1
	cfg.Retry.InitialBackoff = time.Millisecond
	cfg.Retry.MaxBackoff = time.Millisecond
	return cfg
}

func setupChecker(t *testing.T) (*HealthChecker, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open gorm: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewHealthChecker(db, client, testResilienceConfig(), zap.NewNop()), mock, mr
}

func TestHealthChecker_IsDatabaseHealthy(t *testing.T) {
	checker, mock, _ := setupChecker(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	if !checker.IsDatabaseHealthy(context.Background()) {
		t.Error("Expected database to be healthy")
	}

	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
	if checker.IsDatabaseHealthy(context.Background()) {
		t.Error("Expected database to be unhealthy")
	}
}

func TestHealthChecker_IsRedisHealthy(t *testing.T) {
	checker, _, mr := setupChecker(t)

	if !checker.IsRedisHealthy(context.Background()) {
		t.Error("Expected redis to be healthy")
	}

	mr.SetError("LOADING")
	if checker.IsRedisHealthy(context.Background()) {
		t.Error("Expected redis to be unhealthy")
	}
}

func TestHealthChecker_WithDatabaseResilience_OpensCircuit(t *testing.T) {
	checker, _, _ := setupChecker(t)
	ctx := context.Background()
	storageErr := errors.New("connection reset")

	for i := 0; i < 2; i++ {
		_ = checker.WithDatabaseResilience(ctx, "update_pet", func(ctx context.Context) error { return storageErr })
	}

	called := false
	err := checker.WithDatabaseResilience(ctx, "update_pet", func(ctx context.Context) error {
		called = true
		return nil
	})

	if called || !errors.Is(err, apperrors.ErrCircuitOpen) {
		t.Errorf("Expected open circuit, got called=%v err=%v", called, err)
	}
	if checker.pgCircuit.GetState() != resilience.CircuitOpen {
		t.Errorf("Expected postgres circuit OPEN, got %v", checker.pgCircuit.GetState())
	}
	if checker.redisCircuit.GetState() != resilience.CircuitClosed {
		t.Error("Redis circuit must not be affected by postgres failures")
	}
}

func TestHealthChecker_BusinessErrorsDoNotOpenCircuit(t *testing.T) {
	checker, _, _ := setupChecker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := checker.WithDatabaseResilience(ctx, "get_pet", func(ctx context.Context) error { return gorm.ErrRecordNotFound })
		if !apperrors.IsNotFound(err) {
			t.Fatalf("Expected not found to pass through, got %v", err)
		}
	}

	if checker.pgCircuit.GetState() != resilience.CircuitClosed {
		t.Errorf("Expected circuit CLOSED, got %v", checker.pgCircuit.GetState())
	}
}

func TestHealthChecker_WithDatabaseRead_Retries(t *testing.T) {
	checker, _, _ := setupChecker(t)

	calls := 0
	err := checker.WithDatabaseRead(context.Background(), "list_checkins", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("bad connection")
		}
		return nil
	})

	if err != nil || calls != 2 {
		t.Errorf("Expected success on second attempt, got err=%v calls=%d", err, calls)
	}
}

func TestHealthChecker_AppliesTimeout(t *testing.T) {
	checker, _, _ := setupChecker(t)

	var hasDeadline bool
	_ = checker.WithRedisResilience(context.Background(), "get_profile", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	if !hasDeadline {
		t.Error("Expected redis operation context to carry a deadline")
	}
}
