package postgres

import (
	"context"
	"errors"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository представляет репозиторий для работы с профилями пользователей
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository создает новый экземпляр ProfileRepository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

// Create создает профиль вместе с питомцем в одной транзакции
func (r *ProfileRepository) Create(ctx context.Context, profile *models.UserProfile, pet *models.Pet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Профиль создается один раз, повторный онбординг не перезаписывает данные
		var existing models.UserProfile
		result := tx.Where("id = ? OR email = ?", profile.ID, profile.Email).First(&existing)
		if result.Error == nil {
			return apperrors.ErrAlreadyExists
		} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		pet.UserID = profile.ID
		return tx.Create(pet).Error
	})
}

// GetByID получает профиль по ID пользователя
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update сохраняет все поля профиля
func (r *ProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
