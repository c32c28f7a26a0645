package models

import (
	"time"

	"NicoQuitService/internal/pet"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Pet представляет виртуального питомца пользователя (1:1 с пользователем)
type Pet struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name            string         `gorm:"not null" json:"name"`
	Health          int            `gorm:"not null" json:"health"`
	Happiness       int            `gorm:"not null" json:"happiness"`
	Hunger          int            `gorm:"not null" json:"hunger"`
	Outfit          *string        `json:"outfit,omitempty"`
	Accessories     pq.StringArray `gorm:"type:text[]" json:"accessories"`
	IsAlive         bool           `gorm:"not null" json:"is_alive"`
	LastFed         time.Time      `json:"last_fed"`
	LastInteraction time.Time      `json:"last_interaction"`
	DecayedAt       time.Time      `json:"decayed_at"`
	TimesFed        int            `gorm:"not null" json:"times_fed"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName устанавливает имя таблицы для модели Pet
func (Pet) TableName() string {
	return "pet"
}

// BeforeCreate генерирует идентификатор питомца
func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// State возвращает снимок состояния для симуляции
func (p *Pet) State() pet.State {
	outfit := ""
	if p.Outfit != nil {
		outfit = *p.Outfit
	}

	accessories := make([]string, len(p.Accessories))
	copy(accessories, p.Accessories)

	return pet.State{
		Name:            p.Name,
		Health:          p.Health,
		Happiness:       p.Happiness,
		Hunger:          p.Hunger,
		Alive:           p.IsAlive,
		LastFed:         p.LastFed,
		LastInteraction: p.LastInteraction,
		DecayedAt:       p.DecayedAt,
		Outfit:          outfit,
		Accessories:     accessories,
		TimesFed:        p.TimesFed,
	}
}

// WithState возвращает копию строки с примененным снимком состояния.
// Исходная строка не изменяется, чтобы ее можно было отдать при ошибке сохранения.
func (p Pet) WithState(s pet.State) *Pet {
	p.Name = s.Name
	p.Health = s.Health
	p.Happiness = s.Happiness
	p.Hunger = s.Hunger
	p.IsAlive = s.Alive
	p.LastFed = s.LastFed
	p.LastInteraction = s.LastInteraction
	p.DecayedAt = s.DecayedAt
	p.TimesFed = s.TimesFed

	p.Outfit = nil
	if s.Outfit != "" {
		outfit := s.Outfit
		p.Outfit = &outfit
	}

	p.Accessories = make(pq.StringArray, len(s.Accessories))
	copy(p.Accessories, s.Accessories)

	return &p
}

// NewPet создает строку питомца из нового снимка состояния
func NewPet(userID uuid.UUID, s pet.State) *Pet {
	return Pet{UserID: userID}.WithState(s)
}

// FeedPetRequest запрос на кормление питомца
type FeedPetRequest struct {
	UserID uuid.UUID `json:"user_id"`
	FoodID string    `json:"food_id"`
}

// SetOutfitRequest запрос на смену наряда. Пустой OutfitID снимает наряд.
type SetOutfitRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	OutfitID string    `json:"outfit_id"`
}

// AccessoryRequest запрос на добавление или удаление аксессуара
type AccessoryRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessoryID string    `json:"accessory_id"`
}

// PetResponse ответ с состоянием питомца.
// Applied=false означает, что действие не выполнено из-за предусловий (это не ошибка).
type PetResponse struct {
	Pet     *Pet     `json:"pet"`
	Mood    pet.Mood `json:"mood"`
	Applied bool     `json:"applied"`
}
