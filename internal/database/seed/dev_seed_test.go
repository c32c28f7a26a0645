package seed

import (
	"context"
	"regexp"
	"testing"

	"NicoQuitService/internal/catalog"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestSeeder(t *testing.T, env string) (*DevEnvironmentSeeder, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName:           "postgres",
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open gorm: %v", err)
	}

	items, err := catalog.Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	seeder := NewDevEnvironmentSeeder(db, items, zap.NewNop())
	seeder.env = env
	return seeder, mock
}

func TestSeedDemoUser_SkippedOutsideDevelopment(t *testing.T) {
	seeder, mock := newTestSeeder(t, "production")

	if err := seeder.SeedDemoUser(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Expected no queries: %v", err)
	}
}

func TestSeedDemoUser_AlreadyExists(t *testing.T) {
	seeder, mock := newTestSeeder(t, "development")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 OR email = $2`)).
		WithArgs(DemoUserID.String(), "demo@nico.local", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(DemoUserID.String(), "demo@nico.local"))
	mock.ExpectRollback()

	if err := seeder.SeedDemoUser(context.Background()); err != nil {
		t.Fatalf("Expected existing demo user to be skipped, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestSeedCatalog(t *testing.T) {
	seeder, mock := newTestSeeder(t, "")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "achievements" (.+) ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectCommit()

	if err := seeder.SeedCatalog(context.Background()); err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}
