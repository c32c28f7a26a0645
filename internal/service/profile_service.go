package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NicoQuitService/internal/models"
	"NicoQuitService/internal/pet"
	"NicoQuitService/internal/progress"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ProfileService представляет сервис профилей и производных показателей
type ProfileService struct {
	profileRepo    ProfileRepositoryInterface
	checkinRepo    CheckinRepositoryInterface
	crisisRepo     CrisisRepositoryInterface
	cacheRepo      CacheRepositoryInterface
	defaultPetName string
	logger         *zap.Logger
	now            func() time.Time
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(
	profileRepo ProfileRepositoryInterface,
	checkinRepo CheckinRepositoryInterface,
	crisisRepo CrisisRepositoryInterface,
	cacheRepo CacheRepositoryInterface,
	defaultPetName string,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo:    profileRepo,
		checkinRepo:    checkinRepo,
		crisisRepo:     crisisRepo,
		cacheRepo:      cacheRepo,
		defaultPetName: defaultPetName,
		logger:         logger,
		now:            time.Now,
	}
}

// CreateProfile завершает онбординг: создает профиль и питомца
func (s *ProfileService) CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.UserProfile, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, invalidInput("email is required")
	}
	if req.DailyCost < 0 || req.DailyUnits < 0 {
		return nil, invalidInput("daily cost and units must not be negative")
	}

	types, err := nicotineTypes(req.NicotineTypes)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		ID:            req.UserID,
		Email:         email,
		Name:          trimmed(req.Name),
		QuitDate:      req.QuitDate,
		NicotineTypes: types,
		DailyCost:     req.DailyCost,
		DailyUnits:    req.DailyUnits,
		Motivation:    trimmed(req.Motivation),
	}

	petName := strings.TrimSpace(req.PetName)
	if petName == "" {
		petName = s.defaultPetName
	}
	newPet := models.NewPet(req.UserID, pet.New(petName, s.now()))

	if err := s.profileRepo.Create(ctx, profile, newPet); err != nil {
		s.logger.Error("Failed to create profile", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := s.cacheRepo.SetProfile(ctx, profile); err != nil {
		s.logger.Warn("Failed to cache profile", zap.Error(err), zap.String("user_id", profile.ID.String()))
	}
	if err := s.cacheRepo.SetPet(ctx, newPet); err != nil {
		s.logger.Warn("Failed to cache pet", zap.Error(err), zap.String("user_id", profile.ID.String()))
	}

	s.logger.Info("Profile created", zap.String("user_id", profile.ID.String()), zap.String("pet", newPet.Name))
	return profile, nil
}

// GetProfile получает профиль пользователя
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	profile, err := s.cacheRepo.GetProfile(ctx, userID)
	if err == nil {
		s.logger.Debug("Profile retrieved from cache", zap.String("user_id", userID.String()))
		return profile, nil
	}

	profile, err = s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get profile", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := s.cacheRepo.SetProfile(ctx, profile); err != nil {
		s.logger.Warn("Failed to cache profile", zap.Error(err), zap.String("user_id", userID.String()))
	}

	return profile, nil
}

// UpdateProfile изменяет заданные поля профиля
func (s *ProfileService) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.UserProfile, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to get profile for update", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if req.Name != nil {
		profile.Name = trimmed(req.Name)
	}
	if req.QuitDate != nil {
		profile.QuitDate = req.QuitDate
	}
	if req.NicotineTypes != nil {
		types, err := nicotineTypes(req.NicotineTypes)
		if err != nil {
			return nil, err
		}
		profile.NicotineTypes = types
	}
	if req.DailyCost != nil {
		if *req.DailyCost < 0 {
			return nil, invalidInput("daily cost must not be negative")
		}
		profile.DailyCost = *req.DailyCost
	}
	if req.DailyUnits != nil {
		if *req.DailyUnits < 0 {
			return nil, invalidInput("daily units must not be negative")
		}
		profile.DailyUnits = *req.DailyUnits
	}
	if req.Motivation != nil {
		profile.Motivation = trimmed(req.Motivation)
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := s.cacheRepo.SetProfile(ctx, profile); err != nil {
		s.logger.Warn("Failed to cache profile", zap.Error(err), zap.String("user_id", req.UserID.String()))
	}

	return profile, nil
}

// GetStats вычисляет показатели на момент запроса по сохраненной дате отказа
func (s *ProfileService) GetStats(ctx context.Context, userID uuid.UUID) (*models.StatsResponse, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	cravings, err := s.crisisRepo.CountByType(ctx, userID, models.CrisisCraving)
	if err != nil {
		s.logger.Error("Failed to count cravings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to count cravings: %w", err)
	}

	checkins, err := s.checkinRepo.Count(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count checkins", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to count checkins: %w", err)
	}

	now := s.now()
	return &models.StatsResponse{
		Summary:          progress.Summarize(profile.QuitDate, profile.DailyCost, now),
		CravingsOvercome: cravings,
		CheckinCount:     checkins,
		ComputedAt:       now,
	}, nil
}

// nicotineTypes проверяет типы продуктов и убирает повторы
func nicotineTypes(types []models.NicotineType) (pq.StringArray, error) {
	result := make(pq.StringArray, 0, len(types))
	seen := make(map[models.NicotineType]bool, len(types))
	for _, t := range types {
		if !t.IsValid() {
			return nil, invalidInput("unknown nicotine type %q", t)
		}
		if !seen[t] {
			seen[t] = true
			result = append(result, string(t))
		}
	}
	return result, nil
}

// trimmed возвращает nil для пустых строк
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
