package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequirementType показатель, по которому открывается достижение
type RequirementType string

const (
	RequirementStreak   RequirementType = "streak"
	RequirementSavings  RequirementType = "savings"
	RequirementCheckins RequirementType = "checkins"
	RequirementPet      RequirementType = "pet"
)

// Achievement описание достижения из каталога
type Achievement struct {
	ID               string          `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"not null" json:"name"`
	NameDA           string          `gorm:"column:name_da" json:"name_da"`
	Description      string          `json:"description"`
	DescriptionDA    string          `gorm:"column:description_da" json:"description_da"`
	Icon             string          `json:"icon"`
	RequirementType  RequirementType `gorm:"type:varchar(16);not null" json:"requirement_type"`
	RequirementValue int             `gorm:"not null" json:"requirement_value"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName устанавливает имя таблицы для модели Achievement
func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement факт получения достижения пользователем
type UserAchievement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}

// TableName устанавливает имя таблицы для модели UserAchievement
func (UserAchievement) TableName() string {
	return "user_achievements"
}

// BeforeCreate генерирует идентификатор записи
func (u *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// AchievementProgress достижение с прогрессом пользователя
type AchievementProgress struct {
	Achievement
	Progress   int        `json:"progress"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// AchievementsResponse ответ со списком достижений
type AchievementsResponse struct {
	Achievements  []AchievementProgress `json:"achievements"`
	UnlockedCount int                   `json:"unlocked_count"`
	// NewlyUnlocked идентификаторы достижений, открытых этим запросом
	NewlyUnlocked []string `json:"newly_unlocked,omitempty"`
}
