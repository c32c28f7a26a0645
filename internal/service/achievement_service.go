package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/models"
	"NicoQuitService/internal/progress"
	"NicoQuitService/pkg/apperrors"
	"NicoQuitService/pkg/server"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AchievementService представляет сервис достижений
type AchievementService struct {
	achievementRepo AchievementRepositoryInterface
	profileRepo     ProfileRepositoryInterface
	checkinRepo     CheckinRepositoryInterface
	petRepo         PetRepositoryInterface
	inventoryRepo   InventoryRepositoryInterface
	cacheRepo       CacheRepositoryInterface
	catalog         *catalog.Catalog
	logger          *zap.Logger
	now             func() time.Time
}

// NewAchievementService создает новый экземпляр AchievementService
func NewAchievementService(
	achievementRepo AchievementRepositoryInterface,
	profileRepo ProfileRepositoryInterface,
	checkinRepo CheckinRepositoryInterface,
	petRepo PetRepositoryInterface,
	inventoryRepo InventoryRepositoryInterface,
	cacheRepo CacheRepositoryInterface,
	items *catalog.Catalog,
	logger *zap.Logger,
) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		profileRepo:     profileRepo,
		checkinRepo:     checkinRepo,
		petRepo:         petRepo,
		inventoryRepo:   inventoryRepo,
		cacheRepo:       cacheRepo,
		catalog:         items,
		logger:          logger,
		now:             time.Now,
	}
}

// SeedCatalog записывает справочник достижений в хранилище
func (s *AchievementService) SeedCatalog(ctx context.Context) error {
	achievements := s.catalog.AchievementModels()
	if err := s.achievementRepo.UpsertCatalog(ctx, achievements); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}

	s.logger.Info("Achievements catalog seeded", zap.Int("count", len(achievements)))
	return nil
}

// ListAchievements пересчитывает прогресс пользователя, открывает заработанные достижения
// и выдает наряды, открытые длиной серии
func (s *AchievementService) ListAchievements(ctx context.Context, userID uuid.UUID) (*models.AchievementsResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	values, streak, err := s.progressValues(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.achievementRepo.ListUnlocked(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list unlocked achievements", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	unlockedAt := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	now := s.now()
	resp := &models.AchievementsResponse{}
	for _, a := range s.catalog.AchievementModels() {
		value := values[a.RequirementType]
		item := models.AchievementProgress{
			Achievement: a,
			Progress:    min(value, a.RequirementValue),
		}

		at, ok := unlockedAt[a.ID]
		if !ok && value >= a.RequirementValue {
			created, err := s.achievementRepo.Unlock(ctx, &models.UserAchievement{
				UserID:        userID,
				AchievementID: a.ID,
				UnlockedAt:    now,
			})
			if err != nil {
				s.logger.Error("Failed to unlock achievement", zap.Error(err), zap.String("achievement_id", a.ID))
				return nil, fmt.Errorf("failed to unlock achievement: %w", err)
			}
			if created {
				resp.NewlyUnlocked = append(resp.NewlyUnlocked, a.ID)
			}
			at, ok = now, true
		}

		if ok {
			item.Unlocked = true
			item.UnlockedAt = &at
			resp.UnlockedCount++
		}
		resp.Achievements = append(resp.Achievements, item)
	}

	if err := s.grantOutfits(ctx, userID, streak, now); err != nil {
		return nil, err
	}

	if len(resp.NewlyUnlocked) > 0 {
		server.RecordAchievementsUnlocked(len(resp.NewlyUnlocked))
		s.logger.Info("Achievements unlocked",
			zap.String("user_id", userID.String()),
			zap.Strings("achievements", resp.NewlyUnlocked))
	}

	return resp, nil
}

// progressValues собирает показатели по типам требований
func (s *AchievementService) progressValues(ctx context.Context, userID uuid.UUID) (map[models.RequirementType]int, int, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get profile: %w", err)
	}

	checkins, err := s.checkinRepo.Count(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count checkins: %w", err)
	}

	timesFed := 0
	row, err := s.petRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		timesFed = row.TimesFed
	case !apperrors.IsNotFound(err):
		return nil, 0, fmt.Errorf("failed to get pet: %w", err)
	}

	streak := progress.StreakDays(profile.QuitDate, s.now())
	return map[models.RequirementType]int{
		models.RequirementStreak:   streak,
		models.RequirementSavings:  int(math.Floor(progress.MoneySaved(streak, profile.DailyCost))),
		models.RequirementCheckins: int(checkins),
		models.RequirementPet:      timesFed,
	}, streak, nil
}

// grantOutfits выдает наряды, открытые серией, которых еще нет в инвентаре
func (s *AchievementService) grantOutfits(ctx context.Context, userID uuid.UUID, streak int, now time.Time) error {
	granted := 0
	for _, outfit := range s.catalog.OutfitsForStreak(streak) {
		created, err := s.inventoryRepo.Grant(ctx, &models.InventoryItem{
			UserID:     userID,
			ItemType:   models.ItemOutfit,
			ItemID:     outfit.ID,
			Quantity:   1,
			AcquiredAt: now,
		})
		if err != nil {
			s.logger.Error("Failed to grant outfit", zap.Error(err), zap.String("outfit_id", outfit.ID))
			return fmt.Errorf("failed to grant outfit: %w", err)
		}
		if created {
			granted++
		}
	}

	if granted > 0 {
		if err := s.cacheRepo.DeleteInventory(ctx, userID); err != nil {
			s.logger.Warn("Failed to invalidate inventory cache", zap.Error(err), zap.String("user_id", userID.String()))
		}
	}
	return nil
}
