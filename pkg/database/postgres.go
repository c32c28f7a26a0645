package database

import (
	"fmt"
	"time"

	"NicoQuitService/config"
	"NicoQuitService/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB создает подключение к PostgreSQL. Миграции выполняются отдельно через Migrate.
func NewPostgresDB(cfg config.PostgresConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormLog := gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Models возвращает все модели, для которых создаются таблицы
func Models() []interface{} {
	return []interface{}{
		&models.UserProfile{},
		&models.Pet{},
		&models.InventoryItem{},
		&models.Checkin{},
		&models.CrisisLog{},
		&models.Post{},
		&models.Reaction{},
		&models.Report{},
		&models.Achievement{},
		&models.UserAchievement{},
	}
}

// Migrate создает и обновляет таблицы
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
