package postgres

import (
	"context"

	"NicoQuitService/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommunityRepository представляет репозиторий ленты сообщества
type CommunityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository создает новый экземпляр CommunityRepository
func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{
		db: db,
	}
}

// reactionCount строка агрегата реакций
type reactionCount struct {
	PostID uuid.UUID
	Emoji  string
	Count  int64
}

// CreatePost создает публикацию
func (r *CommunityRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetPost получает публикацию по ID
func (r *CommunityRepository) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListFeed возвращает видимые публикации, новые первыми
func (r *CommunityRepository) ListFeed(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("is_hidden = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ReactionCounts подсчитывает реакции по эмодзи для каждой публикации
func (r *CommunityRepository) ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]map[string]int64, error) {
	counts := make(map[uuid.UUID]map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []reactionCount
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Select("post_id, emoji, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id, emoji").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if counts[row.PostID] == nil {
			counts[row.PostID] = make(map[string]int64)
		}
		counts[row.PostID][row.Emoji] = row.Count
	}
	return counts, nil
}

// AddReaction добавляет реакцию. Повторная реакция тем же эмодзи игнорируется.
// Возвращает true, если реакция была добавлена.
func (r *CommunityRepository) AddReaction(ctx context.Context, reaction *models.Reaction) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}, {Name: "emoji"}},
		DoNothing: true,
	}).Create(reaction)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddReport сохраняет жалобу и скрывает публикацию, когда жалоб становится не меньше hideThreshold.
// Возвращает признак новой жалобы и признак того, что публикация скрыта.
func (r *CommunityRepository) AddReport(ctx context.Context, report *models.Report, hideThreshold int) (created bool, hidden bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "reporter_id"}},
			DoNothing: true,
		}).Create(report)
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected > 0

		var count int64
		if err := tx.Model(&models.Report{}).Where("post_id = ?", report.PostID).Count(&count).Error; err != nil {
			return err
		}
		if count < int64(hideThreshold) {
			return nil
		}

		hidden = true
		return tx.Model(&models.Post{}).
			Where("id = ?", report.PostID).
			UpdateColumn("is_hidden", true).Error
	})

	return created, hidden, err
}
