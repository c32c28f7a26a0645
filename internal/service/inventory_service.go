package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/inventory"
	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService представляет сервис инвентаря питомца
type InventoryService struct {
	inventoryRepo InventoryRepositoryInterface
	cacheRepo     CacheRepositoryInterface
	catalog       *catalog.Catalog
	logger        *zap.Logger
	now           func() time.Time
}

// NewInventoryService создает новый экземпляр InventoryService
func NewInventoryService(
	inventoryRepo InventoryRepositoryInterface,
	cacheRepo CacheRepositoryInterface,
	items *catalog.Catalog,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		cacheRepo:     cacheRepo,
		catalog:       items,
		logger:        logger,
		now:           time.Now,
	}
}

// AddItem добавляет предметы из справочника. Количество меньше 1 ничего не меняет.
func (s *InventoryService) AddItem(ctx context.Context, req *models.AddItemRequest) (*models.InventoryResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if !s.catalog.Has(req.ItemType, req.ItemID) {
		return nil, invalidInput("unknown %s item %q", req.ItemType, req.ItemID)
	}

	items, err := s.list(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	ledger := inventory.NewLedger(req.UserID, items)
	if !ledger.Add(req.ItemType, req.ItemID, req.Quantity) {
		return inventoryResponse(ledger), nil
	}

	item := &models.InventoryItem{
		UserID:     req.UserID,
		ItemType:   req.ItemType,
		ItemID:     req.ItemID,
		Quantity:   req.Quantity,
		AcquiredAt: s.now(),
	}
	if err := s.inventoryRepo.Add(ctx, item); err != nil {
		s.logger.Error("Failed to add inventory item",
			zap.Error(err),
			zap.String("user_id", req.UserID.String()),
			zap.String("item_id", req.ItemID))
		return nil, fmt.Errorf("failed to add inventory item: %w", err)
	}

	if err := s.cacheRepo.DeleteInventory(ctx, req.UserID); err != nil {
		s.logger.Warn("Failed to invalidate inventory cache", zap.Error(err), zap.String("user_id", req.UserID.String()))
	}

	return inventoryResponse(ledger), nil
}

// ListInventory возвращает инвентарь пользователя
func (s *InventoryService) ListInventory(ctx context.Context, userID uuid.UUID) (*models.InventoryResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	items, err := s.cacheRepo.GetInventory(ctx, userID)
	if err == nil {
		return inventoryResponse(inventory.NewLedger(userID, items)), nil
	}
	if !errors.Is(err, apperrors.ErrCacheMiss) {
		s.logger.Warn("Failed to read inventory cache", zap.Error(err), zap.String("user_id", userID.String()))
	}

	items, err = s.list(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetInventory(ctx, userID, items); err != nil {
		s.logger.Warn("Failed to cache inventory", zap.Error(err), zap.String("user_id", userID.String()))
	}

	return inventoryResponse(inventory.NewLedger(userID, items)), nil
}

// TotalQuantity возвращает суммарное количество предметов типа
func (s *InventoryService) TotalQuantity(ctx context.Context, req *models.ItemTotalRequest) (*models.ItemTotalResponse, error) {
	if !req.ItemType.IsValid() {
		return nil, invalidInput("unknown item type %q", req.ItemType)
	}

	resp, err := s.ListInventory(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &models.ItemTotalResponse{
		ItemType: req.ItemType,
		Total:    inventory.NewLedger(req.UserID, resp.Items).TotalQuantity(req.ItemType),
	}, nil
}

func (s *InventoryService) list(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	items, err := s.inventoryRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load inventory", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return items, nil
}

func inventoryResponse(ledger *inventory.Ledger) *models.InventoryResponse {
	return &models.InventoryResponse{
		Items:     ledger.Items(),
		TotalFood: ledger.TotalQuantity(models.ItemFood),
	}
}
