package service

import (
	"context"
	"sort"
	"time"

	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// mockStore хранилище в памяти, общее для всех мок-репозиториев
type mockStore struct {
	profiles  map[uuid.UUID]*models.UserProfile
	pets      map[uuid.UUID]*models.Pet
	inventory map[uuid.UUID][]models.InventoryItem
	checkins  map[uuid.UUID]map[string]models.Checkin
	crisis    map[uuid.UUID][]models.CrisisLog
	posts     []models.Post
	reactions map[uuid.UUID]map[string]map[uuid.UUID]bool
	reports   map[uuid.UUID]map[uuid.UUID]bool
	unlocked  map[uuid.UUID]map[string]models.UserAchievement
	catalog   []models.Achievement

	// writeErr возвращается всеми операциями записи, если задан
	writeErr  error
	petWrites int
}

func newMockStore() *mockStore {
	return &mockStore{
		profiles:  make(map[uuid.UUID]*models.UserProfile),
		pets:      make(map[uuid.UUID]*models.Pet),
		inventory: make(map[uuid.UUID][]models.InventoryItem),
		checkins:  make(map[uuid.UUID]map[string]models.Checkin),
		crisis:    make(map[uuid.UUID][]models.CrisisLog),
		reactions: make(map[uuid.UUID]map[string]map[uuid.UUID]bool),
		reports:   make(map[uuid.UUID]map[uuid.UUID]bool),
		unlocked:  make(map[uuid.UUID]map[string]models.UserAchievement),
	}
}

func copyPet(p *models.Pet) *models.Pet {
	c := *p
	c.Accessories = append(pq.StringArray{}, p.Accessories...)
	return &c
}

func (m *mockStore) quantity(userID uuid.UUID, itemType models.ItemType, itemID string) int {
	for _, item := range m.inventory[userID] {
		if item.ItemType == itemType && item.ItemID == itemID {
			return item.Quantity
		}
	}
	return 0
}

// MockProfileRepository мок репозитория профилей
type MockProfileRepository struct{ *mockStore }

func (m MockProfileRepository) Create(ctx context.Context, profile *models.UserProfile, pet *models.Pet) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, exists := m.profiles[profile.ID]; exists {
		return apperrors.ErrAlreadyExists
	}

	c := *profile
	m.profiles[profile.ID] = &c
	pet.UserID = profile.ID
	pet.ID = uuid.New()
	m.pets[profile.ID] = copyPet(pet)
	return nil
}

func (m MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	profile, exists := m.profiles[id]
	if !exists {
		return nil, apperrors.ErrRecordNotFound
	}
	c := *profile
	return &c, nil
}

func (m MockProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	c := *profile
	m.profiles[profile.ID] = &c
	return nil
}

// MockPetRepository мок репозитория питомцев
type MockPetRepository struct{ *mockStore }

func (m MockPetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Pet, error) {
	pet, exists := m.pets[userID]
	if !exists {
		return nil, apperrors.ErrRecordNotFound
	}
	return copyPet(pet), nil
}

func (m MockPetRepository) Update(ctx context.Context, pet *models.Pet) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.petWrites++
	m.pets[pet.UserID] = copyPet(pet)
	return nil
}

func (m MockPetRepository) SaveFeeding(ctx context.Context, pet *models.Pet, foodID string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	items := m.inventory[pet.UserID]
	for i := range items {
		if items[i].ItemType == models.ItemFood && items[i].ItemID == foodID && items[i].Quantity >= 1 {
			items[i].Quantity--
			m.petWrites++
			m.pets[pet.UserID] = copyPet(pet)
			return nil
		}
	}
	return apperrors.ErrInsufficientQuantity
}

// MockInventoryRepository мок репозитория инвентаря
type MockInventoryRepository struct{ *mockStore }

func (m MockInventoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	return append([]models.InventoryItem(nil), m.inventory[userID]...), nil
}

func (m MockInventoryRepository) Add(ctx context.Context, item *models.InventoryItem) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	items := m.inventory[item.UserID]
	for i := range items {
		if items[i].ItemType == item.ItemType && items[i].ItemID == item.ItemID {
			items[i].Quantity += item.Quantity
			return nil
		}
	}
	m.inventory[item.UserID] = append(items, *item)
	return nil
}

func (m MockInventoryRepository) Grant(ctx context.Context, item *models.InventoryItem) (bool, error) {
	if m.writeErr != nil {
		return false, m.writeErr
	}
	for _, existing := range m.inventory[item.UserID] {
		if existing.ItemType == item.ItemType && existing.ItemID == item.ItemID {
			return false, nil
		}
	}
	m.inventory[item.UserID] = append(m.inventory[item.UserID], *item)
	return true, nil
}

// MockCheckinRepository мок репозитория отметок
type MockCheckinRepository struct{ *mockStore }

func (m MockCheckinRepository) Upsert(ctx context.Context, checkin *models.Checkin) (bool, error) {
	if m.writeErr != nil {
		return false, m.writeErr
	}
	byDate := m.checkins[checkin.UserID]
	if byDate == nil {
		byDate = make(map[string]models.Checkin)
		m.checkins[checkin.UserID] = byDate
	}

	existing, exists := byDate[checkin.Date]
	if !exists {
		checkin.ID = uuid.New()
		byDate[checkin.Date] = *checkin
		return true, nil
	}

	existing.Mood = checkin.Mood
	existing.Cravings = checkin.Cravings
	existing.Notes = checkin.Notes
	byDate[checkin.Date] = existing
	*checkin = existing
	return false, nil
}

func (m MockCheckinRepository) GetByDate(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error) {
	checkin, exists := m.checkins[userID][date]
	if !exists {
		return nil, apperrors.ErrRecordNotFound
	}
	return &checkin, nil
}

func (m MockCheckinRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Checkin, error) {
	var result []models.Checkin
	for _, c := range m.checkins[userID] {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m MockCheckinRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(m.checkins[userID])), nil
}

// MockCrisisRepository мок журнала тяги и срывов
type MockCrisisRepository struct{ *mockStore }

func (m MockCrisisRepository) Create(ctx context.Context, log *models.CrisisLog) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	log.ID = uuid.New()
	m.crisis[log.UserID] = append(m.crisis[log.UserID], *log)
	return nil
}

func (m MockCrisisRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.CrisisLog, error) {
	logs := m.crisis[userID]
	result := make([]models.CrisisLog, 0, len(logs))
	for i := len(logs) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, logs[i])
	}
	return result, nil
}

func (m MockCrisisRepository) CountByType(ctx context.Context, userID uuid.UUID, crisisType models.CrisisType) (int64, error) {
	var count int64
	for _, l := range m.crisis[userID] {
		if l.Type == crisisType {
			count++
		}
	}
	return count, nil
}

// MockCommunityRepository мок репозитория сообщества
type MockCommunityRepository struct{ *mockStore }

func (m MockCommunityRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	post.ID = uuid.New()
	post.CreatedAt = time.Now().Add(time.Duration(len(m.posts)) * time.Second)
	m.posts = append(m.posts, *post)
	return nil
}

func (m MockCommunityRepository) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperrors.ErrRecordNotFound
}

func (m MockCommunityRepository) ListFeed(ctx context.Context, limit int) ([]models.Post, error) {
	var result []models.Post
	for i := len(m.posts) - 1; i >= 0 && len(result) < limit; i-- {
		if !m.posts[i].IsHidden {
			result = append(result, m.posts[i])
		}
	}
	return result, nil
}

func (m MockCommunityRepository) ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]map[string]int64, error) {
	counts := make(map[uuid.UUID]map[string]int64)
	for _, id := range postIDs {
		for emoji, users := range m.reactions[id] {
			if counts[id] == nil {
				counts[id] = make(map[string]int64)
			}
			counts[id][emoji] = int64(len(users))
		}
	}
	return counts, nil
}

func (m MockCommunityRepository) AddReaction(ctx context.Context, reaction *models.Reaction) (bool, error) {
	if m.writeErr != nil {
		return false, m.writeErr
	}
	if m.reactions[reaction.PostID] == nil {
		m.reactions[reaction.PostID] = make(map[string]map[uuid.UUID]bool)
	}
	users := m.reactions[reaction.PostID][reaction.Emoji]
	if users == nil {
		users = make(map[uuid.UUID]bool)
		m.reactions[reaction.PostID][reaction.Emoji] = users
	}
	if users[reaction.UserID] {
		return false, nil
	}
	users[reaction.UserID] = true
	return true, nil
}

func (m MockCommunityRepository) AddReport(ctx context.Context, report *models.Report, hideThreshold int) (bool, bool, error) {
	if m.writeErr != nil {
		return false, false, m.writeErr
	}
	if m.reports[report.PostID] == nil {
		m.reports[report.PostID] = make(map[uuid.UUID]bool)
	}
	created := !m.reports[report.PostID][report.ReporterID]
	m.reports[report.PostID][report.ReporterID] = true

	hidden := len(m.reports[report.PostID]) >= hideThreshold
	if hidden {
		for i := range m.posts {
			if m.posts[i].ID == report.PostID {
				m.posts[i].IsHidden = true
			}
		}
	}
	return created, hidden, nil
}

// MockAchievementRepository мок репозитория достижений
type MockAchievementRepository struct{ *mockStore }

func (m MockAchievementRepository) UpsertCatalog(ctx context.Context, achievements []models.Achievement) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.catalog = append([]models.Achievement(nil), achievements...)
	return nil
}

func (m MockAchievementRepository) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error) {
	var result []models.UserAchievement
	for _, u := range m.unlocked[userID] {
		result = append(result, u)
	}
	return result, nil
}

func (m MockAchievementRepository) Unlock(ctx context.Context, unlocked *models.UserAchievement) (bool, error) {
	if m.writeErr != nil {
		return false, m.writeErr
	}
	if m.unlocked[unlocked.UserID] == nil {
		m.unlocked[unlocked.UserID] = make(map[string]models.UserAchievement)
	}
	if _, exists := m.unlocked[unlocked.UserID][unlocked.AchievementID]; exists {
		return false, nil
	}
	m.unlocked[unlocked.UserID][unlocked.AchievementID] = *unlocked
	return true, nil
}

// MockCacheRepository мок кэша
type MockCacheRepository struct {
	profiles  map[uuid.UUID]models.UserProfile
	pets      map[uuid.UUID]models.Pet
	inventory map[uuid.UUID][]models.InventoryItem
	checkins  map[string]models.Checkin
	feed      []models.FeedPost
	hasFeed   bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		profiles:  make(map[uuid.UUID]models.UserProfile),
		pets:      make(map[uuid.UUID]models.Pet),
		inventory: make(map[uuid.UUID][]models.InventoryItem),
		checkins:  make(map[string]models.Checkin),
	}
}

func (m *MockCacheRepository) SetProfile(ctx context.Context, profile *models.UserProfile) error {
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *MockCacheRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	profile, exists := m.profiles[userID]
	if !exists {
		return nil, apperrors.ErrCacheMiss
	}
	return &profile, nil
}

func (m *MockCacheRepository) SetPet(ctx context.Context, pet *models.Pet) error {
	m.pets[pet.UserID] = *copyPet(pet)
	return nil
}

func (m *MockCacheRepository) GetPet(ctx context.Context, userID uuid.UUID) (*models.Pet, error) {
	pet, exists := m.pets[userID]
	if !exists {
		return nil, apperrors.ErrCacheMiss
	}
	return copyPet(&pet), nil
}

func (m *MockCacheRepository) SetInventory(ctx context.Context, userID uuid.UUID, items []models.InventoryItem) error {
	m.inventory[userID] = append([]models.InventoryItem(nil), items...)
	return nil
}

func (m *MockCacheRepository) GetInventory(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	items, exists := m.inventory[userID]
	if !exists {
		return nil, apperrors.ErrCacheMiss
	}
	return items, nil
}

func (m *MockCacheRepository) DeleteInventory(ctx context.Context, userID uuid.UUID) error {
	delete(m.inventory, userID)
	return nil
}

func (m *MockCacheRepository) SetCheckin(ctx context.Context, checkin *models.Checkin) error {
	m.checkins[checkin.UserID.String()+checkin.Date] = *checkin
	return nil
}

func (m *MockCacheRepository) GetCheckin(ctx context.Context, userID uuid.UUID, date string) (*models.Checkin, error) {
	checkin, exists := m.checkins[userID.String()+date]
	if !exists {
		return nil, apperrors.ErrCacheMiss
	}
	return &checkin, nil
}

func (m *MockCacheRepository) SetFeed(ctx context.Context, posts []models.FeedPost) error {
	m.feed = posts
	m.hasFeed = true
	return nil
}

func (m *MockCacheRepository) GetFeed(ctx context.Context) ([]models.FeedPost, error) {
	if !m.hasFeed {
		return nil, apperrors.ErrCacheMiss
	}
	return m.feed, nil
}

func (m *MockCacheRepository) DeleteFeed(ctx context.Context) error {
	m.feed = nil
	m.hasFeed = false
	return nil
}

func (m *MockCacheRepository) ClearUserCache(ctx context.Context, userID uuid.UUID) error {
	delete(m.profiles, userID)
	delete(m.pets, userID)
	delete(m.inventory, userID)
	return nil
}

// testNow фиксированное время для тестов
var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testCatalog() *catalog.Catalog {
	c, err := catalog.Load()
	if err != nil {
		panic(err)
	}
	return c
}

func testLogger() *zap.Logger { return zap.NewNop() }
