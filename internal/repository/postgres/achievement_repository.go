package postgres

import (
	"context"

	"NicoQuitService/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementRepository представляет репозиторий достижений
type AchievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository создает новый экземпляр AchievementRepository
func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{
		db: db,
	}
}

// UpsertCatalog записывает справочник достижений, обновляя существующие описания
func (r *AchievementRepository) UpsertCatalog(ctx context.Context, achievements []models.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "name_da", "description", "description_da", "icon", "requirement_type", "requirement_value",
		}),
	}).Create(&achievements).Error
}

// ListUnlocked возвращает полученные пользователем достижения
func (r *AchievementRepository) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error) {
	var unlocked []models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at").
		Find(&unlocked).Error
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

// Unlock отмечает достижение как полученное. Возвращает false, если оно уже было получено.
func (r *AchievementRepository) Unlock(ctx context.Context, unlocked *models.UserAchievement) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(unlocked)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
