package grpc

import (
	"context"
	"errors"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"
	"NicoQuitService/pkg/server"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProfileServiceInterface определяет методы сервиса профилей
type ProfileServiceInterface interface {
	CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.UserProfile, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*models.StatsResponse, error)
}

// PetServiceInterface определяет методы сервиса питомца
type PetServiceInterface interface {
	GetPet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error)
	FeedPet(ctx context.Context, req *models.FeedPetRequest) (*models.PetResponse, error)
	InteractPet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error)
	RevivePet(ctx context.Context, userID uuid.UUID) (*models.PetResponse, error)
	SetOutfit(ctx context.Context, req *models.SetOutfitRequest) (*models.PetResponse, error)
	AddAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error)
	RemoveAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error)
}

// InventoryServiceInterface определяет методы сервиса инвентаря
type InventoryServiceInterface interface {
	AddItem(ctx context.Context, req *models.AddItemRequest) (*models.InventoryResponse, error)
	ListInventory(ctx context.Context, userID uuid.UUID) (*models.InventoryResponse, error)
	TotalQuantity(ctx context.Context, req *models.ItemTotalRequest) (*models.ItemTotalResponse, error)
}

// CheckinServiceInterface определяет методы сервиса отметок
type CheckinServiceInterface interface {
	SubmitCheckin(ctx context.Context, req *models.SubmitCheckinRequest) (*models.CheckinResponse, error)
	GetTodayCheckin(ctx context.Context, userID uuid.UUID) (*models.CheckinResponse, error)
	ListCheckins(ctx context.Context, userID uuid.UUID) (*models.CheckinListResponse, error)
}

// CrisisServiceInterface определяет методы журнала тяги и срывов
type CrisisServiceInterface interface {
	LogCrisis(ctx context.Context, req *models.LogCrisisRequest) (*models.CrisisResponse, error)
	ListCrisisLogs(ctx context.Context, userID uuid.UUID) (*models.CrisisListResponse, error)
}

// CommunityServiceInterface определяет методы ленты сообщества
type CommunityServiceInterface interface {
	CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error)
	ListFeed(ctx context.Context, req *models.FeedRequest) (*models.FeedResponse, error)
	ReactToPost(ctx context.Context, req *models.ReactRequest) (*models.SimpleResponse, error)
	ReportPost(ctx context.Context, req *models.ReportRequest) (*models.SimpleResponse, error)
}

// AchievementServiceInterface определяет методы сервиса достижений
type AchievementServiceInterface interface {
	ListAchievements(ctx context.Context, userID uuid.UUID) (*models.AchievementsResponse, error)
}

// Services набор сервисов, которые обслуживает обработчик
type Services struct {
	Profiles     ProfileServiceInterface
	Pets         PetServiceInterface
	Inventory    InventoryServiceInterface
	Checkins     CheckinServiceInterface
	Crisis       CrisisServiceInterface
	Community    CommunityServiceInterface
	Achievements AchievementServiceInterface
}

// QuitHandler представляет обработчик gRPC запросов
type QuitHandler struct {
	services Services
	logger   *zap.Logger
}

var _ QuitServiceServer = (*QuitHandler)(nil)

// NewQuitHandler создает новый экземпляр QuitHandler
func NewQuitHandler(services Services, logger *zap.Logger) *QuitHandler {
	return &QuitHandler{
		services: services,
		logger:   logger,
	}
}

// CreateProfile создает профиль и питомца по итогам онбординга
func (h *QuitHandler) CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.ProfileResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	profile, err := h.services.Profiles.CreateProfile(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "create profile", err)
	}
	return &models.ProfileResponse{Profile: profile}, nil
}

// GetProfile возвращает профиль пользователя
func (h *QuitHandler) GetProfile(ctx context.Context, req *models.UserRequest) (*models.ProfileResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	profile, err := h.services.Profiles.GetProfile(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus(ctx, "get profile", err)
	}
	return &models.ProfileResponse{Profile: profile}, nil
}

// UpdateProfile частично обновляет профиль
func (h *QuitHandler) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	profile, err := h.services.Profiles.UpdateProfile(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "update profile", err)
	}
	return &models.ProfileResponse{Profile: profile}, nil
}

// GetStats возвращает серию, экономию и прочие показатели
func (h *QuitHandler) GetStats(ctx context.Context, req *models.UserRequest) (*models.StatsResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	stats, err := h.services.Profiles.GetStats(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus(ctx, "get stats", err)
	}
	return stats, nil
}

// GetPet возвращает питомца
func (h *QuitHandler) GetPet(ctx context.Context, req *models.UserRequest) (*models.PetResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}
	return h.pet(ctx, "get pet")(h.services.Pets.GetPet(ctx, req.UserID))
}

// FeedPet кормит питомца
func (h *QuitHandler) FeedPet(ctx context.Context, req *models.FeedPetRequest) (*models.PetResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}
	return h.pet(ctx, "feed pet")(h.services.Pets.FeedPet(ctx, req))
}

// InteractPet гладит питомца
func (h *QuitHandler) InteractPet(ctx context.Context, req *models.UserRequest) (*models.PetResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}
	return h.pet(ctx, "interact with pet")(h.services.Pets.InteractPet(ctx, req.UserID))
}

// RevivePet возрождает питомца
func (h *QuitHandler) RevivePet(ctx context.Context, req *models.UserRequest) (*models.PetResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}
	return h.pet(ctx, "revive pet")(h.services.Pets.RevivePet(ctx, req.UserID))
}

// SetOutfit меняет наряд питомца
func (h *QuitHandler) SetOutfit(ctx context.Context, req *models.SetOutfitRequest) (*models.PetResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}
	return h.pet(ctx, "set outfit")(h.services.Pets.SetOutfit(ctx, req))
}

// AddAccessory надевает аксессуар
func (h *QuitHandler) AddAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}
	return h.pet(ctx, "add accessory")(h.services.Pets.AddAccessory(ctx, req))
}

// RemoveAccessory снимает аксессуар
func (h *QuitHandler) RemoveAccessory(ctx context.Context, req *models.AccessoryRequest) (*models.PetResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}
	return h.pet(ctx, "remove accessory")(h.services.Pets.RemoveAccessory(ctx, req))
}

// AddInventoryItem добавляет предмет в инвентарь
func (h *QuitHandler) AddInventoryItem(ctx context.Context, req *models.AddItemRequest) (*models.InventoryResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Inventory.AddItem(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "add inventory item", err)
	}
	return resp, nil
}

// ListInventory возвращает инвентарь
func (h *QuitHandler) ListInventory(ctx context.Context, req *models.UserRequest) (*models.InventoryResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Inventory.ListInventory(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus(ctx, "list inventory", err)
	}
	return resp, nil
}

// GetItemTotal возвращает суммарное количество предметов типа
func (h *QuitHandler) GetItemTotal(ctx context.Context, req *models.ItemTotalRequest) (*models.ItemTotalResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Inventory.TotalQuantity(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "get item total", err)
	}
	return resp, nil
}

// SubmitCheckin сохраняет отметку за сегодня
func (h *QuitHandler) SubmitCheckin(ctx context.Context, req *models.SubmitCheckinRequest) (*models.CheckinResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Checkins.SubmitCheckin(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "submit checkin", err)
	}
	return resp, nil
}

// GetTodayCheckin возвращает сегодняшнюю отметку, found=false если ее нет
func (h *QuitHandler) GetTodayCheckin(ctx context.Context, req *models.UserRequest) (*models.CheckinResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Checkins.GetTodayCheckin(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus(ctx, "get today checkin", err)
	}
	return resp, nil
}

// ListCheckins возвращает последние отметки
func (h *QuitHandler) ListCheckins(ctx context.Context, req *models.UserRequest) (*models.CheckinListResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Checkins.ListCheckins(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus(ctx, "list checkins", err)
	}
	return resp, nil
}

// LogCrisis записывает тягу или срыв
func (h *QuitHandler) LogCrisis(ctx context.Context, req *models.LogCrisisRequest) (*models.CrisisResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Crisis.LogCrisis(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "log crisis", err)
	}
	return resp, nil
}

// ListCrisisLogs возвращает журнал тяги и срывов
func (h *QuitHandler) ListCrisisLogs(ctx context.Context, req *models.UserRequest) (*models.CrisisListResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Crisis.ListCrisisLogs(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus(ctx, "list crisis logs", err)
	}
	return resp, nil
}

// CreatePost публикует сообщение в ленте
func (h *QuitHandler) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.PostResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	post, err := h.services.Community.CreatePost(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "create post", err)
	}
	return &models.PostResponse{Post: post}, nil
}

// ListFeed возвращает ленту сообщества
func (h *QuitHandler) ListFeed(ctx context.Context, req *models.FeedRequest) (*models.FeedResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Community.ListFeed(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "list feed", err)
	}
	return resp, nil
}

// ReactToPost добавляет реакцию
func (h *QuitHandler) ReactToPost(ctx context.Context, req *models.ReactRequest) (*models.SimpleResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Community.ReactToPost(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "react to post", err)
	}
	return resp, nil
}

// ReportPost отправляет жалобу на публикацию
func (h *QuitHandler) ReportPost(ctx context.Context, req *models.ReportRequest) (*models.SimpleResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Community.ReportPost(ctx, req)
	if err != nil {
		return nil, h.toStatus(ctx, "report post", err)
	}
	return resp, nil
}

// ListAchievements возвращает достижения с прогрессом
func (h *QuitHandler) ListAchievements(ctx context.Context, req *models.UserRequest) (*models.AchievementsResponse, error) {
	if err := h.resolveUser(ctx, &req.UserID); err != nil {
		return nil, err
	}

	resp, err := h.services.Achievements.ListAchievements(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus(ctx, "list achievements", err)
	}
	return resp, nil
}

// pet переводит ответ сервиса питомца в ответ gRPC
func (h *QuitHandler) pet(ctx context.Context, action string) func(*models.PetResponse, error) (*models.PetResponse, error) {
	return func(resp *models.PetResponse, err error) (*models.PetResponse, error) {
		if err != nil {
			return nil, h.toStatus(ctx, action, err)
		}
		return resp, nil
	}
}

// resolveUser сверяет идентификатор из запроса с пользователем из токена.
// Без аутентификации используется идентификатор из запроса, пустой идентификатор
// заполняется из токена.
func (h *QuitHandler) resolveUser(ctx context.Context, userID *uuid.UUID) error {
	subject, ok := server.UserIDFromContext(ctx)
	if !ok {
		if *userID == uuid.Nil {
			return status.Error(codes.InvalidArgument, "user_id is required")
		}
		return nil
	}

	tokenUser, err := uuid.Parse(subject)
	if err != nil {
		return status.Error(codes.Unauthenticated, "token subject is not a user id")
	}

	if *userID == uuid.Nil {
		*userID = tokenUser
		return nil
	}
	if *userID != tokenUser {
		server.WithRequestID(ctx, h.logger).Warn("Request for another user rejected",
			zap.String("token_user", tokenUser.String()),
			zap.String("user_id", userID.String()))
		return status.Error(codes.PermissionDenied, apperrors.ErrPermissionDenied.Error())
	}
	return nil
}

// toStatus переводит ошибку сервиса в статус gRPC
func (h *QuitHandler) toStatus(ctx context.Context, action string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case apperrors.IsNotFound(err):
		return status.Errorf(codes.NotFound, "%s: not found", action)
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return status.Errorf(codes.AlreadyExists, "%s: already exists", action)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, apperrors.ErrCircuitOpen):
		return status.Errorf(codes.Unavailable, "%s: storage temporarily unavailable", action)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s: timed out", action)
	}

	server.WithRequestID(ctx, h.logger).Error("Failed to "+action, zap.Error(err))
	return status.Errorf(codes.Internal, "failed to %s", action)
}
