package postgres

import (
	"context"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resilience выполняет операции с PostgreSQL через circuit breaker, таймауты и метрики.
// Реализуется database.HealthChecker.
type Resilience interface {
	WithDatabaseResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error
	WithDatabaseRead(ctx context.Context, operation string, fn func(ctx context.Context) error) error
}

var _ Resilience = (*database.HealthChecker)(nil)

// read выполняет чтение с повторными попытками и возвращает его результат
func read[T any](ctx context.Context, res Resilience, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := res.WithDatabaseRead(ctx, operation, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

// write выполняет запись без повторов и возвращает ее результат
func write[T any](ctx context.Context, res Resilience, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := res.WithDatabaseResilience(ctx, operation, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

// ResilientProfileRepository добавляет механизмы отказоустойчивости к репозиторию профилей
type ResilientProfileRepository struct {
	repo *ProfileRepository
	res  Resilience
}

// NewResilientProfileRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientProfileRepository(db *gorm.DB, res Resilience) *ResilientProfileRepository {
	return &ResilientProfileRepository{repo: NewProfileRepository(db), res: res}
}

// Create создает профиль вместе с питомцем
func (r *ResilientProfileRepository) Create(ctx context.Context, profile *models.UserProfile, pet *models.Pet) error {
	return r.res.WithDatabaseResilience(ctx, "create_profile", func(ctx context.Context) error {
		return r.repo.Create(ctx, profile, pet)
	})
}

// GetByID получает профиль по ID
func (r *ResilientProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	return read(ctx, r.res, "get_profile", func(ctx context.Context) (*models.UserProfile, error) {
		return r.repo.GetByID(ctx, id)
	})
}

// Update сохраняет профиль
func (r *ResilientProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	return r.res.WithDatabaseResilience(ctx, "update_profile", func(ctx context.Context) error {
		return r.repo.Update(ctx, profile)
	})
}

// ResilientPetRepository добавляет механизмы отказоустойчивости к репозиторию питомцев
type ResilientPetRepository struct {
	repo *PetRepository
	res  Resilience
}

// NewResilientPetRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientPetRepository(db *gorm.DB, res Resilience) *ResilientPetRepository {
	return &ResilientPetRepository{repo: NewPetRepository(db), res: res}
}

// GetByUserID получает питомца пользователя
func (r *ResilientPetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Pet, error) {
	return read(ctx, r.res, "get_pet", func(ctx context.Context) (*models.Pet, error) {
		return r.repo.GetByUserID(ctx, userID)
	})
}

// Update сохраняет питомца
func (r *ResilientPetRepository) Update(ctx context.Context, pet *models.Pet) error {
	return r.res.WithDatabaseResilience(ctx, "update_pet", func(ctx context.Context) error {
		return r.repo.Update(ctx, pet)
	})
}

// SaveFeeding сохраняет кормление и списание еды
func (r *ResilientPetRepository) SaveFeeding(ctx context.Context, pet *models.Pet, foodID string) error {
	return r.res.WithDatabaseResilience(ctx, "feed_pet", func(ctx context.Context) error {
		return r.repo.SaveFeeding(ctx, pet, foodID)
	})
}

// ResilientInventoryRepository добавляет механизмы отказоустойчивости к репозиторию инвентаря
type ResilientInventoryRepository struct {
	repo *InventoryRepository
	res  Resilience
}

// NewResilientInventoryRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientInventoryRepository(db *gorm.DB, res Resilience) *ResilientInventoryRepository {
	return &ResilientInventoryRepository{repo: NewInventoryRepository(db), res: res}
}

// ListByUser возвращает инвентарь пользователя
func (r *ResilientInventoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	return read(ctx, r.res, "list_inventory", func(ctx context.Context) ([]models.InventoryItem, error) {
		return r.repo.ListByUser(ctx, userID)
	})
}

// Add добавляет предметы в инвентарь
func (r *ResilientInventoryRepository) Add(ctx context.Context, item *models.InventoryItem) error {
	return r.res.WithDatabaseResilience(ctx, "add_inventory_item", func(ctx context.Context) error {
		return r.repo.Add(ctx, item)
	})
}

// Grant выдает предмет, если его еще нет
func (r *ResilientInventoryRepository) Grant(ctx context.Context, item *models.InventoryItem) (bool, error) {
	return write(ctx, r.res, "grant_inventory_item", func(ctx context.Context) (bool, error) {
		return r.repo.Grant(ctx, item)
	})
}

// ResilientCheckinRepository добавляет механизмы отказоустойчивости к репозиторию отметок
type ResilientCheckinRepository struct {
	repo *CheckinRepository
	res  Resilience
}

// NewResilientCheckinRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientCheckinRepository(db *gorm.DB, res Resilience) *ResilientCheckinRepository {
	return &ResilientCheckinRepository{repo: NewCheckinRepository(db), res: res}
}

// Upsert создает или перезаписывает отметку за дату
func (r *ResilientCheckinRepository) Upsert(ctx context.Context, checkin *models.Checkin) (bool, error) {
	return write(ctx, r.res, "upsert_checkin", func(ctx context.Context) (bool, error) {
		return r.repo.Upsert(ctx, checkin)
	})
}

// GetByDate получает отметку за дату
func (r *ResilientCheckinRepository) GetByDate(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error) {
	return read(ctx, r.res, "get_checkin", func(ctx context.Context) (*models.Checkin, error) {
		return r.repo.GetByDate(ctx, userID, date)
	})
}

// ListRecent возвращает последние отметки
func (r *ResilientCheckinRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Checkin, error) {
	return read(ctx, r.res, "list_checkins", func(ctx context.Context) ([]models.Checkin, error) {
		return r.repo.ListRecent(ctx, userID, limit)
	})
}

// Count возвращает количество отметок
func (r *ResilientCheckinRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	return read(ctx, r.res, "count_checkins", func(ctx context.Context) (int64, error) {
		return r.repo.Count(ctx, userID)
	})
}

// ResilientCrisisRepository добавляет механизмы отказоустойчивости к журналу тяги и срывов
type ResilientCrisisRepository struct {
	repo *CrisisRepository
	res  Resilience
}

// NewResilientCrisisRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientCrisisRepository(db *gorm.DB, res Resilience) *ResilientCrisisRepository {
	return &ResilientCrisisRepository{repo: NewCrisisRepository(db), res: res}
}

// Create добавляет запись в журнал
func (r *ResilientCrisisRepository) Create(ctx context.Context, log *models.CrisisLog) error {
	return r.res.WithDatabaseResilience(ctx, "create_crisis_log", func(ctx context.Context) error {
		return r.repo.Create(ctx, log)
	})
}

// ListRecent возвращает последние записи
func (r *ResilientCrisisRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.CrisisLog, error) {
	return read(ctx, r.res, "list_crisis_logs", func(ctx context.Context) ([]models.CrisisLog, error) {
		return r.repo.ListRecent(ctx, userID, limit)
	})
}

// CountByType возвращает количество записей типа
func (r *ResilientCrisisRepository) CountByType(ctx context.Context, userID uuid.UUID, crisisType models.CrisisType) (int64, error) {
	return read(ctx, r.res, "count_crisis_logs", func(ctx context.Context) (int64, error) {
		return r.repo.CountByType(ctx, userID, crisisType)
	})
}

// ResilientCommunityRepository добавляет механизмы отказоустойчивости к репозиторию сообщества
type ResilientCommunityRepository struct {
	repo *CommunityRepository
	res  Resilience
}

// NewResilientCommunityRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientCommunityRepository(db *gorm.DB, res Resilience) *ResilientCommunityRepository {
	return &ResilientCommunityRepository{repo: NewCommunityRepository(db), res: res}
}

// CreatePost создает публикацию
func (r *ResilientCommunityRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.res.WithDatabaseResilience(ctx, "create_post", func(ctx context.Context) error {
		return r.repo.CreatePost(ctx, post)
	})
}

// GetPost получает публикацию
func (r *ResilientCommunityRepository) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return read(ctx, r.res, "get_post", func(ctx context.Context) (*models.Post, error) {
		return r.repo.GetPost(ctx, id)
	})
}

// ListFeed возвращает видимые публикации
func (r *ResilientCommunityRepository) ListFeed(ctx context.Context, limit int) ([]models.Post, error) {
	return read(ctx, r.res, "list_feed", func(ctx context.Context) ([]models.Post, error) {
		return r.repo.ListFeed(ctx, limit)
	})
}

// ReactionCounts подсчитывает реакции
func (r *ResilientCommunityRepository) ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]map[string]int64, error) {
	return read(ctx, r.res, "count_reactions", func(ctx context.Context) (map[uuid.UUID]map[string]int64, error) {
		return r.repo.ReactionCounts(ctx, postIDs)
	})
}

// AddReaction добавляет реакцию
func (r *ResilientCommunityRepository) AddReaction(ctx context.Context, reaction *models.Reaction) (bool, error) {
	return write(ctx, r.res, "add_reaction", func(ctx context.Context) (bool, error) {
		return r.repo.AddReaction(ctx, reaction)
	})
}

// AddReport сохраняет жалобу
func (r *ResilientCommunityRepository) AddReport(ctx context.Context, report *models.Report, hideThreshold int) (bool, bool, error) {
	var created, hidden bool
	err := r.res.WithDatabaseResilience(ctx, "add_report", func(ctx context.Context) error {
		var err error
		created, hidden, err = r.repo.AddReport(ctx, report, hideThreshold)
		return err
	})
	return created, hidden, err
}

// ResilientAchievementRepository добавляет механизмы отказоустойчивости к репозиторию достижений
type ResilientAchievementRepository struct {
	repo *AchievementRepository
	res  Resilience
}

// NewResilientAchievementRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientAchievementRepository(db *gorm.DB, res Resilience) *ResilientAchievementRepository {
	return &ResilientAchievementRepository{repo: NewAchievementRepository(db), res: res}
}

// UpsertCatalog записывает справочник достижений
func (r *ResilientAchievementRepository) UpsertCatalog(ctx context.Context, achievements []models.Achievement) error {
	return r.res.WithDatabaseResilience(ctx, "upsert_achievements", func(ctx context.Context) error {
		return r.repo.UpsertCatalog(ctx, achievements)
	})
}

// ListUnlocked возвращает полученные достижения
func (r *ResilientAchievementRepository) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error) {
	return read(ctx, r.res, "list_user_achievements", func(ctx context.Context) ([]models.UserAchievement, error) {
		return r.repo.ListUnlocked(ctx, userID)
	})
}

// Unlock отмечает достижение как полученное
func (r *ResilientAchievementRepository) Unlock(ctx context.Context, unlocked *models.UserAchievement) (bool, error) {
	return write(ctx, r.res, "unlock_achievement", func(ctx context.Context) (bool, error) {
		return r.repo.Unlock(ctx, unlocked)
	})
}
