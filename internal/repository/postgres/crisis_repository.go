package postgres

import (
	"context"

	"NicoQuitService/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CrisisRepository журнал тяги и срывов. Записи только добавляются.
type CrisisRepository struct {
	db *gorm.DB
}

// NewCrisisRepository создает новый экземпляр CrisisRepository
func NewCrisisRepository(db *gorm.DB) *CrisisRepository {
	return &CrisisRepository{
		db: db,
	}
}

// Create добавляет запись в журнал
func (r *CrisisRepository) Create(ctx context.Context, log *models.CrisisLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListRecent возвращает последние записи, новые первыми
func (r *CrisisRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.CrisisLog, error) {
	var logs []models.CrisisLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// CountByType возвращает количество записей указанного типа
func (r *CrisisRepository) CountByType(ctx context.Context, userID uuid.UUID, crisisType models.CrisisType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CrisisLog{}).
		Where("user_id = ? AND type = ?", userID, crisisType).
		Count(&count).Error
	return count, err
}
