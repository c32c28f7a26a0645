package models

import (
	"time"

	"NicoQuitService/internal/progress"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// NicotineType вид никотиносодержащего продукта
type NicotineType string

const (
	NicotineSnus       NicotineType = "snus"
	NicotineVape       NicotineType = "vape"
	NicotineCigarettes NicotineType = "cigarettes"
)

// IsValid проверяет, что тип продукта известен
func (t NicotineType) IsValid() bool {
	switch t {
	case NicotineSnus, NicotineVape, NicotineCigarettes:
		return true
	}
	return false
}

// UserProfile представляет профиль пользователя, бросающего курить.
// ID совпадает с идентификатором пользователя в сервисе аутентификации.
type UserProfile struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Name          *string        `json:"name,omitempty"`
	QuitDate      *time.Time     `json:"quit_date,omitempty"`
	NicotineTypes pq.StringArray `gorm:"type:text[]" json:"nicotine_types"`
	DailyCost     float64        `gorm:"not null" json:"daily_cost"`
	DailyUnits    int            `gorm:"not null" json:"daily_units"`
	Motivation    *string        `json:"motivation,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName устанавливает имя таблицы для модели UserProfile
func (UserProfile) TableName() string {
	return "users"
}

// CreateProfileRequest запрос на создание профиля по итогам онбординга
type CreateProfileRequest struct {
	UserID        uuid.UUID      `json:"user_id"`
	Email         string         `json:"email"`
	Name          *string        `json:"name,omitempty"`
	QuitDate      *time.Time     `json:"quit_date,omitempty"`
	NicotineTypes []NicotineType `json:"nicotine_types,omitempty"`
	DailyCost     float64        `json:"daily_cost"`
	DailyUnits    int            `json:"daily_units"`
	Motivation    *string        `json:"motivation,omitempty"`
	PetName       string         `json:"pet_name,omitempty"`
}

// UpdateProfileRequest частичное обновление профиля. Nil-поля не меняются.
type UpdateProfileRequest struct {
	UserID        uuid.UUID      `json:"user_id"`
	Name          *string        `json:"name,omitempty"`
	QuitDate      *time.Time     `json:"quit_date,omitempty"`
	NicotineTypes []NicotineType `json:"nicotine_types,omitempty"`
	DailyCost     *float64       `json:"daily_cost,omitempty"`
	DailyUnits    *int           `json:"daily_units,omitempty"`
	Motivation    *string        `json:"motivation,omitempty"`
}

// UserRequest запрос, содержащий только идентификатор пользователя
type UserRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

// ProfileResponse ответ с профилем пользователя
type ProfileResponse struct {
	Profile *UserProfile `json:"profile"`
}

// StatsResponse производные показатели, вычисленные на момент запроса
type StatsResponse struct {
	progress.Summary
	CravingsOvercome int64     `json:"cravings_overcome"`
	CheckinCount     int64     `json:"checkin_count"`
	ComputedAt       time.Time `json:"computed_at"`
}
