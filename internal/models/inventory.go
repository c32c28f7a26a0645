package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemType тип предмета в инвентаре
type ItemType string

const (
	ItemFood      ItemType = "food"
	ItemOutfit    ItemType = "outfit"
	ItemAccessory ItemType = "accessory"
)

// IsValid проверяет, что тип предмета известен
func (t ItemType) IsValid() bool {
	switch t {
	case ItemFood, ItemOutfit, ItemAccessory:
		return true
	}
	return false
}

// InventoryItem запись инвентаря. Для пары (пользователь, тип, предмет) существует не более одной записи.
type InventoryItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_user_item" json:"user_id"`
	ItemType   ItemType  `gorm:"type:varchar(16);not null;uniqueIndex:idx_inventory_user_item" json:"item_type"`
	ItemID     string    `gorm:"not null;uniqueIndex:idx_inventory_user_item" json:"item_id"`
	Quantity   int       `gorm:"not null;check:quantity >= 0" json:"quantity"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// TableName устанавливает имя таблицы для модели InventoryItem
func (InventoryItem) TableName() string {
	return "pet_inventory"
}

// BeforeCreate генерирует идентификатор записи
func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// AddItemRequest запрос на добавление предмета в инвентарь
type AddItemRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	ItemType ItemType  `json:"item_type"`
	ItemID   string    `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// ItemTotalRequest запрос суммарного количества предметов типа
type ItemTotalRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	ItemType ItemType  `json:"item_type"`
}

// ItemTotalResponse суммарное количество предметов типа
type ItemTotalResponse struct {
	ItemType ItemType `json:"item_type"`
	Total    int      `json:"total"`
}

// InventoryResponse ответ с инвентарем пользователя
type InventoryResponse struct {
	Items     []InventoryItem `json:"items"`
	TotalFood int             `json:"total_food"`
}
