package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"
	"NicoQuitService/pkg/server"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentCheckinsLimit = 30

// CheckinService представляет сервис ежедневных отметок
type CheckinService struct {
	checkinRepo   CheckinRepositoryInterface
	inventoryRepo InventoryRepositoryInterface
	cacheRepo     CacheRepositoryInterface
	catalog       *catalog.Catalog
	logger        *zap.Logger
	now           func() time.Time
	// pick выбирает индекс награды из n вариантов
	pick func(n int) int
}

// NewCheckinService создает новый экземпляр CheckinService
func NewCheckinService(
	checkinRepo CheckinRepositoryInterface,
	inventoryRepo InventoryRepositoryInterface,
	cacheRepo CacheRepositoryInterface,
	items *catalog.Catalog,
	logger *zap.Logger,
) *CheckinService {
	return &CheckinService{
		checkinRepo:   checkinRepo,
		inventoryRepo: inventoryRepo,
		cacheRepo:     cacheRepo,
		catalog:       items,
		logger:        logger,
		now:           time.Now,
		pick:          rand.IntN,
	}
}

// SubmitCheckin сохраняет отметку за текущий день (UTC).
// Повторная отметка за день перезаписывает предыдущую, еда в награду выдается только за первую.
func (s *CheckinService) SubmitCheckin(ctx context.Context, req *models.SubmitCheckinRequest) (*models.CheckinResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if req.Mood < models.MinMood || req.Mood > models.MaxMood {
		return nil, invalidInput("mood must be between %d and %d", models.MinMood, models.MaxMood)
	}
	if req.Cravings < models.MinCravings || req.Cravings > models.MaxCravings {
		return nil, invalidInput("cravings must be between %d and %d", models.MinCravings, models.MaxCravings)
	}

	now := s.now()
	notes := strings.TrimSpace(req.Notes)
	checkin := &models.Checkin{
		UserID:   req.UserID,
		Date:     now.UTC().Format(models.DateLayout),
		Mood:     req.Mood,
		Cravings: req.Cravings,
		Notes:    trimmed(&notes),
	}

	created, err := s.checkinRepo.Upsert(ctx, checkin)
	if err != nil {
		s.logger.Error("Failed to save checkin", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("failed to save checkin: %w", err)
	}
	server.RecordCheckin(created)

	if err := s.cacheRepo.SetCheckin(ctx, checkin); err != nil {
		s.logger.Warn("Failed to cache checkin", zap.Error(err), zap.String("user_id", req.UserID.String()))
	}

	resp := &models.CheckinResponse{Checkin: checkin, Found: true}
	if created {
		resp.Reward = s.grantReward(ctx, req.UserID, now)
	}

	s.logger.Info("Checkin submitted",
		zap.String("user_id", req.UserID.String()),
		zap.String("date", checkin.Date),
		zap.Bool("first_of_day", created),
		zap.String("reward", resp.Reward))
	return resp, nil
}

// grantReward выдает случайную еду за первую отметку дня.
// Отметка уже сохранена, поэтому ошибка выдачи только логируется.
func (s *CheckinService) grantReward(ctx context.Context, userID uuid.UUID, now time.Time) string {
	rewards := s.catalog.CheckinRewards
	if len(rewards) == 0 {
		return ""
	}

	foodID := rewards[s.pick(len(rewards))]
	err := s.inventoryRepo.Add(ctx, &models.InventoryItem{
		UserID:     userID,
		ItemType:   models.ItemFood,
		ItemID:     foodID,
		Quantity:   1,
		AcquiredAt: now,
	})
	if err != nil {
		s.logger.Error("Failed to grant checkin reward",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("food_id", foodID))
		return ""
	}

	if err := s.cacheRepo.DeleteInventory(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate inventory cache", zap.Error(err), zap.String("user_id", userID.String()))
	}
	return foodID
}

// GetTodayCheckin возвращает отметку за текущий день. Отсутствие отметки не ошибка.
func (s *CheckinService) GetTodayCheckin(ctx context.Context, userID uuid.UUID) (*models.CheckinResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	date := s.now().UTC().Format(models.DateLayout)

	checkin, err := s.cacheRepo.GetCheckin(ctx, userID, date)
	if err == nil {
		return &models.CheckinResponse{Checkin: checkin, Found: true}, nil
	}
	if !errors.Is(err, apperrors.ErrCacheMiss) {
		s.logger.Warn("Failed to read checkin cache", zap.Error(err), zap.String("user_id", userID.String()))
	}

	checkin, err = s.checkinRepo.GetByDate(ctx, userID, date)
	if apperrors.IsNotFound(err) {
		return &models.CheckinResponse{Found: false}, nil
	}
	if err != nil {
		s.logger.Error("Failed to get checkin", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get checkin: %w", err)
	}

	if err := s.cacheRepo.SetCheckin(ctx, checkin); err != nil {
		s.logger.Warn("Failed to cache checkin", zap.Error(err), zap.String("user_id", userID.String()))
	}
	return &models.CheckinResponse{Checkin: checkin, Found: true}, nil
}

// ListCheckins возвращает последние 30 отметок, новые первыми
func (s *CheckinService) ListCheckins(ctx context.Context, userID uuid.UUID) (*models.CheckinListResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	checkins, err := s.checkinRepo.ListRecent(ctx, userID, recentCheckinsLimit)
	if err != nil {
		s.logger.Error("Failed to list checkins", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}

	return &models.CheckinListResponse{Checkins: checkins}, nil
}
