package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"NicoQuitService/internal/models"
	"NicoQuitService/internal/pet"
	"NicoQuitService/pkg/apperrors"

	"github.com/google/uuid"
)

func newTestPetService(store *mockStore, cache *MockCacheRepository) *PetService {
	svc := NewPetService(MockPetRepository{store}, MockInventoryRepository{store}, cache, testCatalog(), testLogger())
	svc.now = fixedClock
	return svc
}

// seedPet создает питомца, с которым взаимодействовали в момент at
func seedPet(store *mockStore, userID uuid.UUID, health, happiness, hunger int, at time.Time) {
	store.pets[userID] = &models.Pet{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            "Nico",
		Health:          health,
		Happiness:       happiness,
		Hunger:          hunger,
		IsAlive:         health > 0,
		LastFed:         at,
		LastInteraction: at,
	}
}

func TestGetPet_AppliesAndPersistsDecay(t *testing.T) {
	store := newMockStore()
	cache := NewMockCacheRepository()
	svc := newTestPetService(store, cache)

	userID := uuid.New()
	seedPet(store, userID, 100, 100, 100, testNow.Add(-20*time.Hour))

	resp, err := svc.GetPet(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to get pet: %v", err)
	}

	if resp.Pet.Hunger != 60 || resp.Pet.Happiness != 70 || resp.Pet.Health != 100 {
		t.Errorf("Expected decayed stats 100/70/60, got %d/%d/%d", resp.Pet.Health, resp.Pet.Happiness, resp.Pet.Hunger)
	}
	if store.petWrites != 1 || store.pets[userID].Hunger != 60 {
		t.Errorf("Expected decayed state to be persisted once, writes=%d", store.petWrites)
	}
	if !store.pets[userID].DecayedAt.Equal(testNow) {
		t.Error("Expected decay anchor to move to now")
	}

	// Повторное чтение в тот же момент не должно снижать показатели еще раз
	again, err := svc.GetPet(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to get pet: %v", err)
	}
	if again.Pet.Hunger != 60 || store.petWrites != 1 {
		t.Errorf("Expected no compounding decay, hunger=%d writes=%d", again.Pet.Hunger, store.petWrites)
	}
}

func TestGetPet_FrequentReadsDoNotCompoundPenalty(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())

	userID := uuid.New()
	seedPet(store, userID, 100, 100, 10, testNow)

	clock := testNow
	svc.now = func() time.Time { return clock }

	for i := 0; i < 20; i++ {
		clock = clock.Add(time.Second)
		if _, err := svc.GetPet(context.Background(), userID); err != nil {
			t.Fatalf("Failed to get pet: %v", err)
		}
	}

	stored := store.pets[userID]
	if stored.Health != 100 || !stored.IsAlive || store.petWrites != 0 {
		t.Errorf("Expected untouched pet after reads within an hour, health=%d alive=%v writes=%d",
			stored.Health, stored.IsAlive, store.petWrites)
	}

	// Два часа спустя штраф начисляется один раз за каждый час
	clock = testNow.Add(2*time.Hour + time.Minute)
	for i := 0; i < 5; i++ {
		if _, err := svc.GetPet(context.Background(), userID); err != nil {
			t.Fatalf("Failed to get pet: %v", err)
		}
	}
	if stored := store.pets[userID]; stored.Health != 90 || stored.Hunger != 6 || store.petWrites != 1 {
		t.Errorf("Expected health 90 and hunger 6 written once, got health=%d hunger=%d writes=%d",
			stored.Health, stored.Hunger, store.petWrites)
	}
}

func TestGetPet_DecayRateIndependentOfPolling(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())

	userID := uuid.New()
	seedPet(store, userID, 100, 100, 100, testNow)

	clock := testNow
	svc.now = func() time.Time { return clock }

	var resp *models.PetResponse
	for i := 0; i < 12; i++ {
		clock = clock.Add(40 * time.Minute)
		var err error
		if resp, err = svc.GetPet(context.Background(), userID); err != nil {
			t.Fatalf("Failed to get pet: %v", err)
		}
	}

	if resp.Pet.Hunger != 84 || resp.Pet.Happiness != 88 {
		t.Errorf("Expected 84/88 after 8 hours, got hunger=%d happiness=%d", resp.Pet.Hunger, resp.Pet.Happiness)
	}
	if store.pets[userID].Hunger != 84 {
		t.Errorf("Expected stored hunger 84, got %d", store.pets[userID].Hunger)
	}
}

func TestGetPet_NoChangeNoWrite(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())

	userID := uuid.New()
	seedPet(store, userID, 90, 90, 90, testNow.Add(-10*time.Minute))

	resp, err := svc.GetPet(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to get pet: %v", err)
	}
	if store.petWrites != 0 {
		t.Errorf("Expected no write when decay does not change stats, got %d", store.petWrites)
	}
	if resp.Mood != pet.MoodHappy {
		t.Errorf("Expected happy mood, got %s", resp.Mood)
	}
}

func TestGetPet_DiesFromNeglect(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())

	userID := uuid.New()
	seedPet(store, userID, 5, 10, 10, testNow.Add(-time.Hour))

	resp, err := svc.GetPet(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to get pet: %v", err)
	}

	if resp.Pet.Health != 0 || resp.Pet.IsAlive {
		t.Errorf("Expected dead pet, got health=%d alive=%v", resp.Pet.Health, resp.Pet.IsAlive)
	}
	if store.pets[userID].IsAlive {
		t.Error("Expected stored alive flag to follow health")
	}
	if resp.Mood != pet.MoodDead {
		t.Errorf("Expected dead mood, got %s", resp.Mood)
	}
}

func TestGetPet_NotFound(t *testing.T) {
	svc := newTestPetService(newMockStore(), NewMockCacheRepository())

	_, err := svc.GetPet(context.Background(), uuid.New())
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestFeedPet(t *testing.T) {
	store := newMockStore()
	cache := NewMockCacheRepository()
	svc := newTestPetService(store, cache)

	userID := uuid.New()
	seedPet(store, userID, 70, 60, 50, testNow)
	store.inventory[userID] = []models.InventoryItem{{UserID: userID, ItemType: models.ItemFood, ItemID: "apple", Quantity: 1}}
	cache.inventory[userID] = store.inventory[userID]

	resp, err := svc.FeedPet(context.Background(), &models.FeedPetRequest{UserID: userID, FoodID: "apple"})
	if err != nil {
		t.Fatalf("Failed to feed pet: %v", err)
	}

	if !resp.Applied {
		t.Fatal("Expected feeding to be applied")
	}
	if resp.Pet.Health != 80 || resp.Pet.Hunger != 70 || resp.Pet.Happiness != 65 || resp.Pet.TimesFed != 1 {
		t.Errorf("Unexpected stats after apple: %+v", resp.Pet)
	}
	if store.quantity(userID, models.ItemFood, "apple") != 0 {
		t.Error("Expected apple to be consumed")
	}
	if _, cached := cache.inventory[userID]; cached {
		t.Error("Expected inventory cache to be invalidated")
	}
	if cache.pets[userID].TimesFed != 1 {
		t.Error("Expected cache to hold the fed pet")
	}

	// Еда закончилась: действие не выполняется
	resp, err = svc.FeedPet(context.Background(), &models.FeedPetRequest{UserID: userID, FoodID: "apple"})
	if err != nil {
		t.Fatalf("Expected no error without food, got %v", err)
	}
	if resp.Applied || resp.Pet.TimesFed != 1 {
		t.Errorf("Expected no-op without food, got %+v", resp)
	}
}

func TestFeedPet_DeadPetIgnoresFood(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())

	userID := uuid.New()
	seedPet(store, userID, 0, 0, 0, testNow)
	store.inventory[userID] = []models.InventoryItem{{UserID: userID, ItemType: models.ItemFood, ItemID: "cake", Quantity: 2}}

	resp, err := svc.FeedPet(context.Background(), &models.FeedPetRequest{UserID: userID, FoodID: "cake"})
	if err != nil {
		t.Fatalf("Expected no error for dead pet, got %v", err)
	}
	if resp.Applied || resp.Pet.IsAlive {
		t.Errorf("Expected dead pet to stay dead, got %+v", resp)
	}
	if store.quantity(userID, models.ItemFood, "cake") != 2 {
		t.Error("Food must not be consumed by a dead pet")
	}
}

func TestFeedPet_UnknownFood(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())

	userID := uuid.New()
	seedPet(store, userID, 100, 100, 100, testNow)

	_, err := svc.FeedPet(context.Background(), &models.FeedPetRequest{UserID: userID, FoodID: "pizza"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestFeedPet_PersistenceFailure(t *testing.T) {
	store := newMockStore()
	cache := NewMockCacheRepository()
	svc := newTestPetService(store, cache)

	userID := uuid.New()
	seedPet(store, userID, 70, 60, 50, testNow)
	store.inventory[userID] = []models.InventoryItem{{UserID: userID, ItemType: models.ItemFood, ItemID: "apple", Quantity: 1}}
	store.writeErr = errors.New("connection reset")

	resp, err := svc.FeedPet(context.Background(), &models.FeedPetRequest{UserID: userID, FoodID: "apple"})
	if err == nil || resp != nil {
		t.Fatalf("Expected error and no state, got %+v (err=%v)", resp, err)
	}
	if _, cached := cache.pets[userID]; cached {
		t.Error("Cache must not be updated when persistence fails")
	}
	if store.pets[userID].Health != 70 {
		t.Error("Stored pet must not change")
	}
}

func TestInteractPet(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())

	userID := uuid.New()
	seedPet(store, userID, 100, 50, 100, testNow)

	resp, err := svc.InteractPet(context.Background(), userID)
	if err != nil {
		t.Fatalf("Failed to interact: %v", err)
	}
	if !resp.Applied || resp.Pet.Happiness != 65 {
		t.Errorf("Expected happiness 65, got %+v", resp.Pet)
	}
}

func TestSickenAndRevivePet(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())
	ctx := context.Background()

	userID := uuid.New()
	seedPet(store, userID, 20, 80, 80, testNow)

	resp, err := svc.SickenPet(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to sicken pet: %v", err)
	}
	if resp.Pet.Health != 0 || resp.Pet.IsAlive || resp.Pet.Happiness != 40 {
		t.Errorf("Expected slip to kill a weak pet, got %+v", resp.Pet)
	}

	resp, err = svc.RevivePet(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to revive pet: %v", err)
	}
	if !resp.Applied || !resp.Pet.IsAlive || resp.Pet.Health != 50 || resp.Pet.Happiness != 50 || resp.Pet.Hunger != 50 {
		t.Errorf("Expected revived pet at 50/50/50, got %+v", resp.Pet)
	}

	resp, err = svc.RevivePet(ctx, userID)
	if err != nil {
		t.Fatalf("Failed to revive pet: %v", err)
	}
	if resp.Applied {
		t.Error("Expected reviving an alive pet to be a no-op")
	}
}

func TestSetOutfit(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())
	ctx := context.Background()

	userID := uuid.New()
	seedPet(store, userID, 100, 100, 100, testNow)

	resp, err := svc.SetOutfit(ctx, &models.SetOutfitRequest{UserID: userID, OutfitID: "wizard"})
	if err != nil {
		t.Fatalf("Failed to set outfit: %v", err)
	}
	if resp.Applied || resp.Pet.Outfit != nil {
		t.Error("Expected outfit that is not owned to be ignored")
	}

	store.inventory[userID] = []models.InventoryItem{{UserID: userID, ItemType: models.ItemOutfit, ItemID: "wizard", Quantity: 1}}
	resp, err = svc.SetOutfit(ctx, &models.SetOutfitRequest{UserID: userID, OutfitID: "wizard"})
	if err != nil {
		t.Fatalf("Failed to set outfit: %v", err)
	}
	if !resp.Applied || resp.Pet.Outfit == nil || *resp.Pet.Outfit != "wizard" {
		t.Errorf("Expected wizard outfit, got %+v", resp.Pet.Outfit)
	}

	resp, err = svc.SetOutfit(ctx, &models.SetOutfitRequest{UserID: userID})
	if err != nil {
		t.Fatalf("Failed to remove outfit: %v", err)
	}
	if resp.Pet.Outfit != nil {
		t.Errorf("Expected outfit to be removed, got %q", *resp.Pet.Outfit)
	}

	_, err = svc.SetOutfit(ctx, &models.SetOutfitRequest{UserID: userID, OutfitID: "tuxedo"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown outfit, got %v", err)
	}
}

func TestAccessories(t *testing.T) {
	store := newMockStore()
	svc := newTestPetService(store, NewMockCacheRepository())
	ctx := context.Background()

	userID := uuid.New()
	seedPet(store, userID, 100, 100, 100, testNow)
	store.inventory[userID] = []models.InventoryItem{{UserID: userID, ItemType: models.ItemAccessory, ItemID: "scarf", Quantity: 1}}

	resp, err := svc.AddAccessory(ctx, &models.AccessoryRequest{UserID: userID, AccessoryID: "scarf"})
	if err != nil || !resp.Applied {
		t.Fatalf("Expected scarf to be added, got %+v (err=%v)", resp, err)
	}

	resp, err = svc.AddAccessory(ctx, &models.AccessoryRequest{UserID: userID, AccessoryID: "scarf"})
	if err != nil || resp.Applied || len(resp.Pet.Accessories) != 1 {
		t.Errorf("Expected duplicate accessory to be ignored, got %+v (err=%v)", resp, err)
	}

	resp, err = svc.AddAccessory(ctx, &models.AccessoryRequest{UserID: userID, AccessoryID: "bow_tie"})
	if err != nil || resp.Applied {
		t.Errorf("Expected accessory that is not owned to be ignored, got %+v (err=%v)", resp, err)
	}

	resp, err = svc.RemoveAccessory(ctx, &models.AccessoryRequest{UserID: userID, AccessoryID: "scarf"})
	if err != nil || !resp.Applied || len(resp.Pet.Accessories) != 0 {
		t.Errorf("Expected scarf to be removed, got %+v (err=%v)", resp, err)
	}
	if len(store.pets[userID].Accessories) != 0 {
		t.Error("Expected removal to be persisted")
	}
}
