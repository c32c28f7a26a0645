package postgres

import (
	"context"

	"NicoQuitService/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckinRepository представляет репозиторий для работы с ежедневными отметками
type CheckinRepository struct {
	db *gorm.DB
}

// NewCheckinRepository создает новый экземпляр CheckinRepository
func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{
		db: db,
	}
}

// Upsert создает отметку за дату или перезаписывает настроение, тягу и заметки существующей.
// Возвращает true, если отметка за эту дату создана впервые. После вызова checkin содержит сохраненную строку.
func (r *CheckinRepository) Upsert(ctx context.Context, checkin *models.Checkin) (bool, error) {
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).Create(checkin)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			created = true
			return nil
		}

		// Отметка за эту дату уже есть, обновляем ее
		err := tx.Model(&models.Checkin{}).
			Where("user_id = ? AND date = ?", checkin.UserID, checkin.Date).
			Updates(map[string]interface{}{
				"mood":     checkin.Mood,
				"cravings": checkin.Cravings,
				"notes":    checkin.Notes,
			}).Error
		if err != nil {
			return err
		}

		var stored models.Checkin
		if err := tx.Where("user_id = ? AND date = ?", checkin.UserID, checkin.Date).First(&stored).Error; err != nil {
			return err
		}
		*checkin = stored
		return nil
	})

	return created, err
}

// GetByDate получает отметку пользователя за дату в формате YYYY-MM-DD
func (r *CheckinRepository) GetByDate(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error) {
	var checkin models.Checkin
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

// ListRecent возвращает последние отметки, новые первыми
func (r *CheckinRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Checkin, error) {
	var checkins []models.Checkin
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&checkins).Error
	if err != nil {
		return nil, err
	}
	return checkins, nil
}

// Count возвращает количество отметок пользователя
func (r *CheckinRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
