package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CrisisType тип кризисного события
type CrisisType string

const (
	CrisisCraving CrisisType = "craving"
	CrisisSlip    CrisisType = "slip"
)

// IsValid проверяет, что тип события известен
func (t CrisisType) IsValid() bool {
	return t == CrisisCraving || t == CrisisSlip
}

// CrisisLog запись о тяге или срыве. После создания не изменяется.
type CrisisLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Timestamp    time.Time  `gorm:"not null;index" json:"timestamp"`
	Type         CrisisType `gorm:"type:varchar(16);not null" json:"type"`
	Duration     *int       `json:"duration,omitempty"`
	CopingMethod *string    `json:"coping_method,omitempty"`
}

// TableName устанавливает имя таблицы для модели CrisisLog
func (CrisisLog) TableName() string {
	return "crisis_logs"
}

// BeforeCreate генерирует идентификатор записи
func (c *CrisisLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// LogCrisisRequest запрос на запись кризисного события. Duration в секундах.
type LogCrisisRequest struct {
	UserID       uuid.UUID  `json:"user_id"`
	Type         CrisisType `json:"type"`
	Duration     int        `json:"duration,omitempty"`
	CopingMethod string     `json:"coping_method,omitempty"`
}

// CrisisResponse ответ на запись события. Pet заполняется, если срыв повлиял на питомца.
type CrisisResponse struct {
	Log *CrisisLog `json:"log"`
	Pet *Pet       `json:"pet,omitempty"`
}

// CrisisListResponse ответ со списком событий
type CrisisListResponse struct {
	Logs             []CrisisLog `json:"logs"`
	CravingsOvercome int64       `json:"cravings_overcome"`
}
