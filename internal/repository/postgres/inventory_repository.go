package postgres

import (
	"context"

	"NicoQuitService/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository представляет репозиторий для работы с инвентарем питомца
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository создает новый экземпляр InventoryRepository
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{
		db: db,
	}
}

var inventoryKey = []clause.Column{{Name: "user_id"}, {Name: "item_type"}, {Name: "item_id"}}

// ListByUser возвращает все записи инвентаря пользователя, включая записи с нулевым количеством
func (r *InventoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("item_type, item_id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Add увеличивает количество существующей записи или создает новую одним запросом
func (r *InventoryRepository) Add(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: inventoryKey,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("pet_inventory.quantity + excluded.quantity"),
		}),
	}).Create(item).Error
}

// Grant создает запись с предметом, если у пользователя его еще нет.
// Возвращает true, если запись была создана.
func (r *InventoryRepository) Grant(ctx context.Context, item *models.InventoryItem) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   inventoryKey,
		DoNothing: true,
	}).Create(item)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
