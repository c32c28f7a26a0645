package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"NicoQuitService/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TTL для разных типов кэша
	profileTTL   = 30 * time.Minute
	petTTL       = 5 * time.Minute
	inventoryTTL = 15 * time.Minute
	checkinTTL   = 24 * time.Hour
	feedTTL      = time.Minute

	feedKey = "community:feed"
)

// CacheRepository представляет репозиторий для работы с кэшем в Redis
type CacheRepository struct {
	client *redis.Client
}

// NewCacheRepository создает новый экземпляр CacheRepository
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{
		client: client,
	}
}

func profileKey(userID uuid.UUID) string   { return fmt.Sprintf("user:%s:profile", userID) }
func petKey(userID uuid.UUID) string       { return fmt.Sprintf("user:%s:pet", userID) }
func inventoryKey(userID uuid.UUID) string { return fmt.Sprintf("user:%s:inventory", userID) }
func checkinKey(userID uuid.UUID, date string) string {
	return fmt.Sprintf("user:%s:checkin:%s", userID, date)
}

// setJSON сохраняет значение в JSON с TTL
func setJSON(ctx context.Context, client *redis.Client, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}

// getJSON читает значение из JSON. При отсутствии ключа возвращает redis.Nil.
func getJSON[T any](ctx context.Context, client *redis.Client, key string) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// SetProfile кэширует профиль
func (r *CacheRepository) SetProfile(ctx context.Context, profile *models.UserProfile) error {
	return setJSON(ctx, r.client, profileKey(profile.ID), profile, profileTTL)
}

// GetProfile получает профиль из кэша
func (r *CacheRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return getJSON[models.UserProfile](ctx, r.client, profileKey(userID))
}

// SetPet кэширует сохраненное состояние питомца
func (r *CacheRepository) SetPet(ctx context.Context, pet *models.Pet) error {
	return setJSON(ctx, r.client, petKey(pet.UserID), pet, petTTL)
}

// GetPet получает питомца из кэша
func (r *CacheRepository) GetPet(ctx context.Context, userID uuid.UUID) (*models.Pet, error) {
	return getJSON[models.Pet](ctx, r.client, petKey(userID))
}

// SetInventory кэширует инвентарь пользователя
func (r *CacheRepository) SetInventory(ctx context.Context, userID uuid.UUID, items []models.InventoryItem) error {
	return setJSON(ctx, r.client, inventoryKey(userID), items, inventoryTTL)
}

// GetInventory получает инвентарь из кэша
func (r *CacheRepository) GetInventory(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	items, err := getJSON[[]models.InventoryItem](ctx, r.client, inventoryKey(userID))
	if err != nil {
		return nil, err
	}
	return *items, nil
}

// DeleteInventory удаляет инвентарь из кэша
func (r *CacheRepository) DeleteInventory(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, inventoryKey(userID)).Err()
}

// SetCheckin кэширует отметку за ее дату
func (r *CacheRepository) SetCheckin(ctx context.Context, checkin *models.Checkin) error {
	return setJSON(ctx, r.client, checkinKey(checkin.UserID, checkin.Date), checkin, checkinTTL)
}

// GetCheckin получает отметку за дату из кэша
func (r *CacheRepository) GetCheckin(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error) {
	return getJSON[models.Checkin](ctx, r.client, checkinKey(userID, date))
}

// SetFeed кэширует первую страницу ленты
func (r *CacheRepository) SetFeed(ctx context.Context, posts []models.FeedPost) error {
	return setJSON(ctx, r.client, feedKey, posts, feedTTL)
}

// GetFeed получает ленту из кэша
func (r *CacheRepository) GetFeed(ctx context.Context) ([]models.FeedPost, error) {
	posts, err := getJSON[[]models.FeedPost](ctx, r.client, feedKey)
	if err != nil {
		return nil, err
	}
	return *posts, nil
}

// DeleteFeed сбрасывает кэш ленты
func (r *CacheRepository) DeleteFeed(ctx context.Context) error {
	return r.client.Del(ctx, feedKey).Err()
}

// ClearUserCache очищает весь кэш пользователя
func (r *CacheRepository) ClearUserCache(ctx context.Context, userID uuid.UUID) error {
	pattern := fmt.Sprintf("user:%s:*", userID)

	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}
