package redis

import (
	"context"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/database"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Resilience выполняет операции с Redis через circuit breaker, таймаут и метрики.
// Реализуется database.HealthChecker.
type Resilience interface {
	WithRedisResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error
}

var _ Resilience = (*database.HealthChecker)(nil)

// ResilientCacheRepository добавляет механизмы отказоустойчивости к кэшу.
// Промах кэша (redis.Nil) не считается отказом и не размыкает circuit breaker.
type ResilientCacheRepository struct {
	repo *CacheRepository
	res  Resilience
}

// NewResilientCacheRepository создает новый экземпляр отказоустойчивого кэш-репозитория
func NewResilientCacheRepository(client *redis.Client, res Resilience) *ResilientCacheRepository {
	return &ResilientCacheRepository{
		repo: NewCacheRepository(client),
		res:  res,
	}
}

func get[T any](ctx context.Context, res Resilience, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := res.WithRedisResilience(ctx, operation, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

// SetProfile кэширует профиль
func (r *ResilientCacheRepository) SetProfile(ctx context.Context, profile *models.UserProfile) error {
	return r.res.WithRedisResilience(ctx, "set_profile_cache", func(ctx context.Context) error {
		return r.repo.SetProfile(ctx, profile)
	})
}

// GetProfile получает профиль из кэша
func (r *ResilientCacheRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return get(ctx, r.res, "get_profile_cache", func(ctx context.Context) (*models.UserProfile, error) {
		return r.repo.GetProfile(ctx, userID)
	})
}

// SetPet кэширует питомца
func (r *ResilientCacheRepository) SetPet(ctx context.Context, pet *models.Pet) error {
	return r.res.WithRedisResilience(ctx, "set_pet_cache", func(ctx context.Context) error {
		return r.repo.SetPet(ctx, pet)
	})
}

// GetPet получает питомца из кэша
func (r *ResilientCacheRepository) GetPet(ctx context.Context, userID uuid.UUID) (*models.Pet, error) {
	return get(ctx, r.res, "get_pet_cache", func(ctx context.Context) (*models.Pet, error) {
		return r.repo.GetPet(ctx, userID)
	})
}

// SetInventory кэширует инвентарь
func (r *ResilientCacheRepository) SetInventory(ctx context.Context, userID uuid.UUID, items []models.InventoryItem) error {
	return r.res.WithRedisResilience(ctx, "set_inventory_cache", func(ctx context.Context) error {
		return r.repo.SetInventory(ctx, userID, items)
	})
}

// GetInventory получает инвентарь из кэша
func (r *ResilientCacheRepository) GetInventory(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	return get(ctx, r.res, "get_inventory_cache", func(ctx context.Context) ([]models.InventoryItem, error) {
		return r.repo.GetInventory(ctx, userID)
	})
}

// DeleteInventory удаляет инвентарь из кэша
func (r *ResilientCacheRepository) DeleteInventory(ctx context.Context, userID uuid.UUID) error {
	return r.res.WithRedisResilience(ctx, "delete_inventory_cache", func(ctx context.Context) error {
		return r.repo.DeleteInventory(ctx, userID)
	})
}

// SetCheckin кэширует отметку
func (r *ResilientCacheRepository) SetCheckin(ctx context.Context, checkin *models.Checkin) error {
	return r.res.WithRedisResilience(ctx, "set_checkin_cache", func(ctx context.Context) error {
		return r.repo.SetCheckin(ctx, checkin)
	})
}

// GetCheckin получает отметку из кэша
func (r *ResilientCacheRepository) GetCheckin(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error) {
	return get(ctx, r.res, "get_checkin_cache", func(ctx context.Context) (*models.Checkin, error) {
		return r.repo.GetCheckin(ctx, userID, date)
	})
}

// SetFeed кэширует ленту
func (r *ResilientCacheRepository) SetFeed(ctx context.Context, posts []models.FeedPost) error {
	return r.res.WithRedisResilience(ctx, "set_feed_cache", func(ctx context.Context) error {
		return r.repo.SetFeed(ctx, posts)
	})
}

// GetFeed получает ленту из кэша
func (r *ResilientCacheRepository) GetFeed(ctx context.Context) ([]models.FeedPost, error) {
	return get(ctx, r.res, "get_feed_cache", r.repo.GetFeed)
}

// DeleteFeed сбрасывает кэш ленты
func (r *ResilientCacheRepository) DeleteFeed(ctx context.Context) error {
	return r.res.WithRedisResilience(ctx, "delete_feed_cache", r.repo.DeleteFeed)
}

// ClearUserCache очищает весь кэш пользователя
func (r *ResilientCacheRepository) ClearUserCache(ctx context.Context, userID uuid.UUID) error {
	return r.res.WithRedisResilience(ctx, "clear_user_cache", func(ctx context.Context) error {
		return r.repo.ClearUserCache(ctx, userID)
	})
}
