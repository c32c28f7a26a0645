package postgres

import (
	"context"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PetRepository представляет репозиторий для работы с питомцами
type PetRepository struct {
	db *gorm.DB
}

// NewPetRepository создает новый экземпляр PetRepository
func NewPetRepository(db *gorm.DB) *PetRepository {
	return &PetRepository{
		db: db,
	}
}

// GetByUserID получает питомца пользователя
func (r *PetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pet).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// Update сохраняет состояние питомца
func (r *PetRepository) Update(ctx context.Context, pet *models.Pet) error {
	return r.db.WithContext(ctx).Save(pet).Error
}

// SaveFeeding списывает единицу еды и сохраняет питомца в одной транзакции.
// Если еды в инвентаре нет, возвращает apperrors.ErrInsufficientQuantity и ничего не меняет.
func (r *PetRepository) SaveFeeding(ctx context.Context, pet *models.Pet, foodID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := consumeOne(tx, pet.UserID, models.ItemFood, foodID); err != nil {
			return err
		}
		return tx.Save(pet).Error
	})
}

// consumeOne уменьшает количество предмета на единицу, не опуская его ниже нуля
func consumeOne(tx *gorm.DB, userID uuid.UUID, itemType models.ItemType, itemID string) error {
	result := tx.Model(&models.InventoryItem{}).
		Where("user_id = ? AND item_type = ? AND item_id = ? AND quantity >= 1", userID, itemType, itemID).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInsufficientQuantity
	}
	return nil
}
