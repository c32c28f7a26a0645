package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/server"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentCrisisLimit = 50

// PetSickener применяет к питомцу последствия срыва
type PetSickener interface {
	SickenPet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error)
}

// CrisisService представляет сервис журнала тяги и срывов
type CrisisService struct {
	crisisRepo CrisisRepositoryInterface
	pets       PetSickener
	logger     *zap.Logger
	now        func() time.Time
}

// NewCrisisService создает новый экземпляр CrisisService
func NewCrisisService(crisisRepo CrisisRepositoryInterface, pets PetSickener, logger *zap.Logger) *CrisisService {
	return &CrisisService{
		crisisRepo: crisisRepo,
		pets:       pets,
		logger:     logger,
		now:        time.Now,
	}
}

// LogCrisis записывает тягу или срыв. Срыв также делает питомца больным.
func (s *CrisisService) LogCrisis(ctx context.Context, req *models.LogCrisisRequest) (*models.CrisisResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, invalidInput("unknown crisis type %q", req.Type)
	}
	if req.Duration < 0 {
		return nil, invalidInput("duration must not be negative")
	}

	log := &models.CrisisLog{
		UserID:    req.UserID,
		Timestamp: s.now(),
		Type:      req.Type,
	}
	if req.Duration > 0 {
		duration := req.Duration
		log.Duration = &duration
	}
	coping := strings.TrimSpace(req.CopingMethod)
	log.CopingMethod = trimmed(&coping)

	if err := s.crisisRepo.Create(ctx, log); err != nil {
		s.logger.Error("Failed to log crisis", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("failed to log crisis: %w", err)
	}
	server.RecordCrisisLog(string(req.Type))

	resp := &models.CrisisResponse{Log: log}
	if req.Type != models.CrisisSlip {
		return resp, nil
	}

	petResp, err := s.pets.SickenPet(ctx, req.UserID)
	if err != nil {
		// Запись уже сохранена, последствия для питомца не откатывают ее
		s.logger.Error("Failed to sicken pet after slip", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return resp, nil
	}

	resp.Pet = petResp.Pet
	s.logger.Info("Slip logged", zap.String("user_id", req.UserID.String()), zap.Int("pet_health", petResp.Pet.Health))
	return resp, nil
}

// ListCrisisLogs возвращает последние 50 записей и число преодоленных приступов тяги
func (s *CrisisService) ListCrisisLogs(ctx context.Context, userID uuid.UUID) (*models.CrisisListResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	logs, err := s.crisisRepo.ListRecent(ctx, userID, recentCrisisLimit)
	if err != nil {
		s.logger.Error("Failed to list crisis logs", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list crisis logs: %w", err)
	}

	overcome, err := s.crisisRepo.CountByType(ctx, userID, models.CrisisCraving)
	if err != nil {
		s.logger.Error("Failed to count cravings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to count cravings: %w", err)
	}

	return &models.CrisisListResponse{Logs: logs, CravingsOvercome: overcome}, nil
}
