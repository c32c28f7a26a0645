package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/inventory"
	"NicoQuitService/internal/models"
	"NicoQuitService/internal/pet"
	"NicoQuitService/pkg/apperrors"
	"NicoQuitService/pkg/server"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PetService представляет сервис виртуального питомца.
// Состояние меняется только через чистые функции пакета pet, в кэш и ответ попадает
// только то, что подтвердило хранилище.
type PetService struct {
	petRepo       PetRepositoryInterface
	inventoryRepo InventoryRepositoryInterface
	cacheRepo     CacheRepositoryInterface
	catalog       *catalog.Catalog
	logger        *zap.Logger
	now           func() time.Time
}

// NewPetService создает новый экземпляр PetService
func NewPetService(
	petRepo PetRepositoryInterface,
	inventoryRepo InventoryRepositoryInterface,
	cacheRepo CacheRepositoryInterface,
	items *catalog.Catalog,
	logger *zap.Logger,
) *PetService {
	return &PetService{
		petRepo:       petRepo,
		inventoryRepo: inventoryRepo,
		cacheRepo:     cacheRepo,
		catalog:       items,
		logger:        logger,
		now:           time.Now,
	}
}

// mutation вычисляет следующее состояние из уже рассчитанного снижения
type mutation func(s pet.State, now time.Time) (pet.State, bool)

// GetPet возвращает питомца с учетом снижения показателей на момент запроса.
// Изменившиеся показатели сохраняются, чтобы флаг жизни в хранилище следовал за здоровьем.
func (s *PetService) GetPet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	row, err := s.cacheRepo.GetPet(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			s.logger.Warn("Failed to read pet cache", zap.Error(err), zap.String("user_id", userID.String()))
		}
		if row, err = s.load(ctx, userID); err != nil {
			return nil, err
		}
	}

	current := row.State()
	settled := pet.Settle(current, s.now())
	if !statsChanged(current, settled) {
		return response(row, true), nil
	}

	next := row.WithState(settled)
	if err := s.persist(ctx, next, s.petRepo.Update); err != nil {
		return nil, err
	}

	if !next.IsAlive && row.IsAlive {
		s.logger.Info("Pet died from neglect", zap.String("user_id", userID.String()))
		server.RecordPetEvent("death", true)
	}
	return response(next, true), nil
}

// FeedPet кормит питомца едой из инвентаря. Кормление и списание еды сохраняются вместе.
func (s *PetService) FeedPet(ctx context.Context, req *models.FeedPetRequest) (*models.PetResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	food, ok := s.catalog.Food(req.FoodID)
	if !ok {
		return nil, invalidInput("unknown food %q", req.FoodID)
	}

	items, err := s.inventoryRepo.ListByUser(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to load inventory", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	available := inventory.NewLedger(req.UserID, items).Quantity(models.ItemFood, food.ID)

	save := func(ctx context.Context, p *models.Pet) error {
		return s.petRepo.SaveFeeding(ctx, p, food.ID)
	}

	resp, err := s.apply(ctx, req.UserID, "feed", func(st pet.State, now time.Time) (pet.State, bool) {
		return pet.Feed(st, food, available, now)
	}, save)
	if errors.Is(err, apperrors.ErrInsufficientQuantity) {
		// Еду успели съесть параллельным запросом
		return s.GetPet(ctx, req.UserID)
	}
	if err != nil {
		return nil, err
	}

	if resp.Applied {
		if err := s.cacheRepo.DeleteInventory(ctx, req.UserID); err != nil {
			s.logger.Warn("Failed to invalidate inventory cache", zap.Error(err), zap.String("user_id", req.UserID.String()))
		}
	}
	return resp, nil
}

// InteractPet гладит питомца
func (s *PetService) InteractPet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error) {
	return s.apply(ctx, userID, "interact", pet.Interact, s.petRepo.Update)
}

// SickenPet применяет последствия срыва
func (s *PetService) SickenPet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error) {
	return s.apply(ctx, userID, "sicken", func(st pet.State, _ time.Time) (pet.State, bool) {
		return pet.Sicken(st), st.Alive
	}, s.petRepo.Update)
}

// RevivePet возрождает мертвого питомца. Для живого питомца ничего не делает.
func (s *PetService) RevivePet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error) {
	return s.apply(ctx, userID, "revive", pet.Revive, s.petRepo.Update)
}

// SetOutfit надевает наряд из инвентаря. Пустой идентификатор снимает наряд.
func (s *PetService) SetOutfit(ctx context.Context, req *models.SetOutfitRequest) (*models.PetResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if req.OutfitID != "" && !s.catalog.Has(models.ItemOutfit, req.OutfitID) {
		return nil, invalidInput("unknown outfit %q", req.OutfitID)
	}

	owned := true
	if req.OutfitID != "" {
		var err error
		if owned, err = s.owns(ctx, req.UserID, models.ItemOutfit, req.OutfitID); err != nil {
			return nil, err
		}
	}

	return s.apply(ctx, req.UserID, "outfit", func(st pet.State, _ time.Time) (pet.State, bool) {
		if !owned || st.Outfit == req.OutfitID {
			return st, false
		}
		return pet.SetOutfit(st, req.OutfitID), true
	}, s.petRepo.Update)
}

// AddAccessory надевает аксессуар из инвентаря
func (s *PetService) AddAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if !s.catalog.Has(models.ItemAccessory, req.AccessoryID) {
		return nil, invalidInput("unknown accessory %q", req.AccessoryID)
	}

	owned, err := s.owns(ctx, req.UserID, models.ItemAccessory, req.AccessoryID)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, req.UserID, "accessory_add", func(st pet.State, _ time.Time) (pet.State, bool) {
		if !owned {
			return st, false
		}
		return pet.AddAccessory(st, req.AccessoryID)
	}, s.petRepo.Update)
}

// RemoveAccessory снимает аксессуар
func (s *PetService) RemoveAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	return s.apply(ctx, req.UserID, "accessory_remove", func(st pet.State, _ time.Time) (pet.State, bool) {
		return pet.RemoveAccessory(st, req.AccessoryID)
	}, s.petRepo.Update)
}

// apply загружает питомца из хранилища, применяет снижение и действие и сохраняет результат.
// Если действие не выполнено, сохраняется только изменившееся снижение.
func (s *PetService) apply(
	ctx context.Context,
	userID uuid.UUID,
	event string,
	mutate mutation,
	save func(ctx context.Context, p *models.Pet) error,
) (*models.PetResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	current := row.State()
	settled := pet.Settle(current, now)
	next, applied := mutate(settled, now)
	server.RecordPetEvent(event, applied)

	if !applied {
		if !statsChanged(current, settled) {
			return response(row, false), nil
		}
		decayed := row.WithState(settled)
		if err := s.persist(ctx, decayed, s.petRepo.Update); err != nil {
			return nil, err
		}
		return response(decayed, false), nil
	}

	updated := row.WithState(next)
	if err := s.persist(ctx, updated, save); err != nil {
		return nil, err
	}

	s.logger.Debug("Pet updated",
		zap.String("user_id", userID.String()),
		zap.String("event", event),
		zap.Int("health", updated.Health),
		zap.Bool("alive", updated.IsAlive))
	return response(updated, true), nil
}

// load получает питомца из хранилища
func (s *PetService) load(ctx context.Context, userID uuid.UUID) (*models.Pet, error) {
	row, err := s.petRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to get pet", zap.Error(err), zap.String("user_id", userID.String()))
		}
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return row, nil
}

// persist сохраняет питомца и после подтверждения обновляет кэш
func (s *PetService) persist(ctx context.Context, row *models.Pet, save func(ctx context.Context, p *models.Pet) error) error {
	if err := save(ctx, row); err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientQuantity) {
			s.logger.Error("Failed to save pet", zap.Error(err), zap.String("user_id", row.UserID.String()))
		}
		return fmt.Errorf("failed to save pet: %w", err)
	}

	if err := s.cacheRepo.SetPet(ctx, row); err != nil {
		s.logger.Warn("Failed to cache pet", zap.Error(err), zap.String("user_id", row.UserID.String()))
	}
	return nil
}

// owns проверяет наличие предмета в инвентаре
func (s *PetService) owns(ctx context.Context, userID uuid.UUID, itemType models.ItemType, itemID string) (bool, error) {
	items, err := s.inventoryRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load inventory", zap.Error(err), zap.String("user_id", userID.String()))
		return false, fmt.Errorf("failed to load inventory: %w", err)
	}
	return inventory.NewLedger(userID, items).Owns(itemType, itemID), nil
}

// statsChanged сообщает, изменило ли снижение показатели или флаг жизни
func statsChanged(before, after pet.State) bool {
	return before.Health != after.Health ||
		before.Happiness != after.Happiness ||
		before.Hunger != after.Hunger ||
		before.Alive != after.Alive
}

func response(row *models.Pet, applied bool) *models.PetResponse {
	return &models.PetResponse{
		Pet:     row,
		Mood:    pet.MoodOf(row.State()),
		Applied: applied,
	}
}
