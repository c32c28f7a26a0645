package service

import (
	"context"
	"fmt"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"

	"github.com/google/uuid"
)

// ProfileRepositoryInterface описывает хранилище профилей
type ProfileRepositoryInterface interface {
	Create(ctx context.Context, profile *models.UserProfile, pet *models.Pet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) error
}

// PetRepositoryInterface описывает хранилище питомцев
type PetRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	SaveFeeding(ctx context.Context, pet *models.Pet, foodID string) error
}

// InventoryRepositoryInterface описывает хранилище инвентаря
type InventoryRepositoryInterface interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
	Add(ctx context.Context, item *models.InventoryItem) error
	Grant(ctx context.Context, item *models.InventoryItem) (bool, error)
}

// CheckinRepositoryInterface описывает хранилище ежедневных отметок
type CheckinRepositoryInterface interface {
	Upsert(ctx context.Context, checkin *models.Checkin) (bool, error)
	GetByDate(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Checkin, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

// CrisisRepositoryInterface описывает журнал тяги и срывов
type CrisisRepositoryInterface interface {
	Create(ctx context.Context, log *models.CrisisLog) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.CrisisLog, error)
	CountByType(ctx context.Context, userID uuid.UUID, crisisType models.CrisisType) (int64, error)
}

// CommunityRepositoryInterface описывает хранилище ленты сообщества
type CommunityRepositoryInterface interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListFeed(ctx context.Context, limit int) ([]models.Post, error)
	ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]map[string]int64, error)
	AddReaction(ctx context.Context, reaction *models.Reaction) (bool, error)
	AddReport(ctx context.Context, report *models.Report, hideThreshold int) (bool, bool, error)
}

// AchievementRepositoryInterface описывает хранилище достижений
type AchievementRepositoryInterface interface {
	UpsertCatalog(ctx context.Context, achievements []models.Achievement) error
	ListUnlocked(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error)
	Unlock(ctx context.Context, unlocked *models.UserAchievement) (bool, error)
}

// CacheRepositoryInterface описывает интерфейс для работы с кэшем.
// Промах возвращается как apperrors.ErrCacheMiss.
type CacheRepositoryInterface interface {
	SetProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	SetPet(ctx context.Context, pet *models.Pet) error
	GetPet(ctx context.Context, userID uuid.UUID) (*models.Pet, error)
	SetInventory(ctx context.Context, userID uuid.UUID, items []models.InventoryItem) error
	GetInventory(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
	DeleteInventory(ctx context.Context, userID uuid.UUID) error
	SetCheckin(ctx context.Context, checkin *models.Checkin) error
	GetCheckin(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error)
	SetFeed(ctx context.Context, posts []models.FeedPost) error
	GetFeed(ctx context.Context) ([]models.FeedPost, error)
	DeleteFeed(ctx context.Context) error
	ClearUserCache(ctx context.Context, userID uuid.UUID) error
}

// invalidInput оборачивает apperrors.ErrInvalidInput с пояснением
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return invalidInput("user_id is required")
	}
	return nil
}
