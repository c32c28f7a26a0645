package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/apperrors"
	"NicoQuitService/pkg/server"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxPostLength = 500

// CommunityService представляет сервис анонимной ленты сообщества
type CommunityService struct {
	communityRepo CommunityRepositoryInterface
	cacheRepo     CacheRepositoryInterface
	hideThreshold int
	feedLimit     int
	logger        *zap.Logger
}

// NewCommunityService создает новый экземпляр CommunityService.
// hideThreshold - число жалоб, после которого публикация скрывается.
func NewCommunityService(
	communityRepo CommunityRepositoryInterface,
	cacheRepo CacheRepositoryInterface,
	hideThreshold, feedLimit int,
	logger *zap.Logger,
) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		cacheRepo:     cacheRepo,
		hideThreshold: max(1, hideThreshold),
		feedLimit:     max(1, feedLimit),
		logger:        logger,
	}
}

// AnonymousName возвращает постоянный псевдоним пользователя в ленте
func AnonymousName(userID uuid.UUID) string {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	return fmt.Sprintf("Kriger #%d", 1000+h.Sum32()%9000)
}

// CreatePost публикует сообщение от имени псевдонима
func (s *CommunityService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, invalidInput("unknown post type %q", req.Type)
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, invalidInput("content is required")
	}
	if utf8.RuneCountInString(content) > maxPostLength {
		return nil, invalidInput("content is longer than %d characters", maxPostLength)
	}

	post := &models.Post{
		UserID:        req.UserID,
		AnonymousName: AnonymousName(req.UserID),
		Content:       content,
		Type:          req.Type,
	}
	if err := s.communityRepo.CreatePost(ctx, post); err != nil {
		s.logger.Error("Failed to create post", zap.Error(err), zap.String("user_id", req.UserID.String()))
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	server.RecordCommunityAction("post")

	s.invalidateFeed(ctx)
	return post, nil
}

// ListFeed возвращает видимые публикации с реакциями, новые первыми
func (s *CommunityService) ListFeed(ctx context.Context, req *models.FeedRequest) (*models.FeedResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > s.feedLimit {
		limit = s.feedLimit
	}

	// В кэше хранится только полная первая страница
	cacheable := limit == s.feedLimit
	if cacheable {
		posts, err := s.cacheRepo.GetFeed(ctx)
		if err == nil {
			return &models.FeedResponse{Posts: posts}, nil
		}
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			s.logger.Warn("Failed to read feed cache", zap.Error(err))
		}
	}

	posts, err := s.communityRepo.ListFeed(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list feed", zap.Error(err))
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	counts, err := s.communityRepo.ReactionCounts(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to count reactions", zap.Error(err))
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}

	feed := make([]models.FeedPost, 0, len(posts))
	for _, p := range posts {
		reactions := counts[p.ID]
		if reactions == nil {
			reactions = map[string]int64{}
		}
		feed = append(feed, models.FeedPost{Post: p, Reactions: reactions})
	}

	if cacheable {
		if err := s.cacheRepo.SetFeed(ctx, feed); err != nil {
			s.logger.Warn("Failed to cache feed", zap.Error(err))
		}
	}

	return &models.FeedResponse{Posts: feed}, nil
}

// ReactToPost добавляет реакцию. Повторная реакция тем же эмодзи ничего не меняет.
func (s *CommunityService) ReactToPost(ctx context.Context, req *models.ReactRequest) (*models.SimpleResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if !models.IsValidReaction(req.Emoji) {
		return nil, invalidInput("unsupported reaction %q", req.Emoji)
	}
	if err := s.requirePost(ctx, req.PostID); err != nil {
		return nil, err
	}

	created, err := s.communityRepo.AddReaction(ctx, &models.Reaction{
		PostID: req.PostID,
		UserID: req.UserID,
		Emoji:  req.Emoji,
	})
	if err != nil {
		s.logger.Error("Failed to add reaction", zap.Error(err), zap.String("post_id", req.PostID.String()))
		return nil, fmt.Errorf("failed to add reaction: %w", err)
	}

	if !created {
		return &models.SimpleResponse{Success: true, Message: "already reacted"}, nil
	}

	server.RecordCommunityAction("react")
	s.invalidateFeed(ctx)
	return &models.SimpleResponse{Success: true}, nil
}

// ReportPost сохраняет жалобу. При достижении порога публикация скрывается из ленты.
func (s *CommunityService) ReportPost(ctx context.Context, req *models.ReportRequest) (*models.SimpleResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, invalidInput("reason is required")
	}
	if err := s.requirePost(ctx, req.PostID); err != nil {
		return nil, err
	}

	created, hidden, err := s.communityRepo.AddReport(ctx, &models.Report{
		PostID:     req.PostID,
		ReporterID: req.UserID,
		Reason:     reason,
	}, s.hideThreshold)
	if err != nil {
		s.logger.Error("Failed to report post", zap.Error(err), zap.String("post_id", req.PostID.String()))
		return nil, fmt.Errorf("failed to report post: %w", err)
	}

	if created {
		server.RecordCommunityAction("report")
	}
	if hidden {
		s.logger.Info("Post hidden after reports", zap.String("post_id", req.PostID.String()))
		s.invalidateFeed(ctx)
		return &models.SimpleResponse{Success: true, Message: "post hidden"}, nil
	}

	return &models.SimpleResponse{Success: true}, nil
}

func (s *CommunityService) requirePost(ctx context.Context, postID uuid.UUID) error {
	if postID == uuid.Nil {
		return invalidInput("post_id is required")
	}

	if _, err := s.communityRepo.GetPost(ctx, postID); err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to get post", zap.Error(err), zap.String("post_id", postID.String()))
		}
		return fmt.Errorf("failed to get post: %w", err)
	}
	return nil
}

func (s *CommunityService) invalidateFeed(ctx context.Context) {
	if err := s.cacheRepo.DeleteFeed(ctx); err != nil {
		s.logger.Warn("Failed to invalidate feed cache", zap.Error(err))
	}
}
