package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/models"
	"NicoQuitService/internal/pet"
	"NicoQuitService/internal/repository/postgres"
	"NicoQuitService/pkg/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemoUserID постоянный идентификатор демо-пользователя среды разработки
var DemoUserID = uuid.MustParse("00000000-0000-4000-8000-00000000d3e0")

// starterFood еда, которую демо-пользователь получает при создании
var starterFood = map[string]int{
	"apple":  3,
	"carrot": 2,
	"cake":   1,
}

// DevEnvironmentSeeder заполняет справочники и данные для среды разработки
type DevEnvironmentSeeder struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	logger  *zap.Logger
	env     string
	now     func() time.Time
}

// NewDevEnvironmentSeeder создает новый объект для заполнения данными.
// Демо-пользователь создается только при APP_ENV=development.
func NewDevEnvironmentSeeder(db *gorm.DB, items *catalog.Catalog, logger *zap.Logger) *DevEnvironmentSeeder {
	return &DevEnvironmentSeeder{
		db:      db,
		catalog: items,
		logger:  logger,
		env:     os.Getenv("APP_ENV"),
		now:     time.Now,
	}
}

// SeedCatalog записывает справочник достижений. Безопасно вызывать при каждом запуске.
func (s *DevEnvironmentSeeder) SeedCatalog(ctx context.Context) error {
	achievements := s.catalog.AchievementModels()
	if err := postgres.NewAchievementRepository(s.db).UpsertCatalog(ctx, achievements); err != nil {
		return fmt.Errorf("не удалось записать справочник достижений: %w", err)
	}

	s.logger.Info("Справочник достижений записан", zap.Int("count", len(achievements)))
	return nil
}

// SeedDemoUser создает демо-пользователя с питомцем и стартовой едой
func (s *DevEnvironmentSeeder) SeedDemoUser(ctx context.Context) error {
	if s.env != "development" {
		s.logger.Debug("Не в режиме разработки, пропускаем создание демо-пользователя")
		return nil
	}

	now := s.now()
	quitDate := now.AddDate(0, 0, -5)
	name := "Demo"
	profile := &models.UserProfile{
		ID:            DemoUserID,
		Email:         "demo@nico.local",
		Name:          &name,
		QuitDate:      &quitDate,
		NicotineTypes: []string{string(models.NicotineVape)},
		DailyCost:     45,
		DailyUnits:    1,
	}

	err := postgres.NewProfileRepository(s.db).Create(ctx, profile, models.NewPet(DemoUserID, pet.New(pet.DefaultName, now)))
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		s.logger.Info("Демо-пользователь уже существует", zap.String("user_id", DemoUserID.String()))
		return nil
	}
	if err != nil {
		s.logger.Error("Не удалось создать демо-пользователя", zap.Error(err))
		return fmt.Errorf("не удалось создать демо-пользователя: %w", err)
	}

	inventory := postgres.NewInventoryRepository(s.db)
	for foodID, quantity := range starterFood {
		_, err := inventory.Grant(ctx, &models.InventoryItem{
			UserID:     DemoUserID,
			ItemType:   models.ItemFood,
			ItemID:     foodID,
			Quantity:   quantity,
			AcquiredAt: now,
		})
		if err != nil {
			return fmt.Errorf("не удалось выдать стартовую еду: %w", err)
		}
	}

	s.logger.Info("Создан демо-пользователь", zap.String("user_id", DemoUserID.String()))
	return nil
}

// SeedAll заполняет справочники и, в режиме разработки, демо-данные
func (s *DevEnvironmentSeeder) SeedAll(ctx context.Context) error {
	if err := s.SeedCatalog(ctx); err != nil {
		return err
	}
	return s.SeedDemoUser(ctx)
}
