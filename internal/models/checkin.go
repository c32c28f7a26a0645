package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Границы шкал ежедневной отметки
const (
	MinMood     = 1
	MaxMood     = 5
	MinCravings = 0
	MaxCravings = 10

	// DateLayout формат календарной даты отметки
	DateLayout = "2006-01-02"
)

// Checkin ежедневная отметка настроения и тяги. Дата - естественный ключ в пределах пользователя.
type Checkin struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_checkin_user_date" json:"user_id"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_checkin_user_date" json:"date"`
	Mood      int       `gorm:"not null" json:"mood"`
	Cravings  int       `gorm:"not null" json:"cravings"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName устанавливает имя таблицы для модели Checkin
func (Checkin) TableName() string {
	return "checkins"
}

// BeforeCreate генерирует идентификатор отметки
func (c *Checkin) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SubmitCheckinRequest запрос на отметку за сегодня
type SubmitCheckinRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	Mood     int       `json:"mood"`
	Cravings int       `json:"cravings"`
	Notes    string    `json:"notes,omitempty"`
}

// CheckinResponse ответ с отметкой. Found=false означает, что отметки еще нет.
type CheckinResponse struct {
	Checkin *Checkin `json:"checkin,omitempty"`
	Found   bool     `json:"found"`
	// Reward еда, выданная за первую отметку дня
	Reward string `json:"reward,omitempty"`
}

// CheckinListResponse ответ со списком отметок
type CheckinListResponse struct {
	Checkins []Checkin `json:"checkins"`
}
