package inventory

import (
	"time"

	"NicoQuitService/internal/models"

	"github.com/google/uuid"
)

// Ledger учет предметов одного пользователя в памяти.
// Строится из записей репозитория и повторяет правила, которые репозиторий применяет атомарно.
type Ledger struct {
	userID uuid.UUID
	items  []models.InventoryItem
	now    func() time.Time
}

// NewLedger создает учет по существующим записям. Записи копируются.
func NewLedger(userID uuid.UUID, items []models.InventoryItem) *Ledger {
	copied := make([]models.InventoryItem, len(items))
	copy(copied, items)

	return &Ledger{
		userID: userID,
		items:  copied,
		now:    time.Now,
	}
}

// Add увеличивает количество предмета или создает новую запись.
// Количество меньше 1 и неизвестный тип игнорируются.
func (l *Ledger) Add(itemType models.ItemType, itemID string, quantity int) bool {
	if quantity < 1 || !itemType.IsValid() || itemID == "" {
		return false
	}

	if idx := l.find(itemType, itemID); idx >= 0 {
		l.items[idx].Quantity += quantity
		return true
	}

	l.items = append(l.items, models.InventoryItem{
		UserID:     l.userID,
		ItemType:   itemType,
		ItemID:     itemID,
		Quantity:   quantity,
		AcquiredAt: l.now(),
	})
	return true
}

// Consume списывает одну единицу предмета. При нехватке ничего не меняет и возвращает false.
// Записи с нулевым количеством сохраняются.
func (l *Ledger) Consume(itemType models.ItemType, itemID string) bool {
	idx := l.find(itemType, itemID)
	if idx < 0 || l.items[idx].Quantity < 1 {
		return false
	}

	l.items[idx].Quantity--
	return true
}

// Quantity возвращает количество конкретного предмета
func (l *Ledger) Quantity(itemType models.ItemType, itemID string) int {
	if idx := l.find(itemType, itemID); idx >= 0 {
		return l.items[idx].Quantity
	}
	return 0
}

// Owns проверяет, есть ли у пользователя хотя бы одна единица предмета
func (l *Ledger) Owns(itemType models.ItemType, itemID string) bool {
	return l.Quantity(itemType, itemID) > 0
}

// TotalQuantity суммирует количество по всем предметам типа
func (l *Ledger) TotalQuantity(itemType models.ItemType) int {
	total := 0
	for _, item := range l.items {
		if item.ItemType == itemType {
			total += item.Quantity
		}
	}
	return total
}

// Items возвращает копию записей
func (l *Ledger) Items() []models.InventoryItem {
	copied := make([]models.InventoryItem, len(l.items))
	copy(copied, l.items)
	return copied
}

func (l *Ledger) find(itemType models.ItemType, itemID string) int {
	for i, item := range l.items {
		if item.ItemType == itemType && item.ItemID == itemID {
			return i
		}
	}
	return -1
}
