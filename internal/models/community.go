package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostType тип публикации в сообществе
type PostType string

const (
	PostStruggle  PostType = "struggle"
	PostVictory   PostType = "victory"
	PostMilestone PostType = "milestone"
)

// IsValid проверяет, что тип публикации известен
func (t PostType) IsValid() bool {
	switch t {
	case PostStruggle, PostVictory, PostMilestone:
		return true
	}
	return false
}

// Допустимые реакции на публикации
const (
	ReactionStrong = "💪"
	ReactionParty  = "🎉"
	ReactionHeart  = "❤️"
)

// IsValidReaction проверяет, что эмодзи входит в набор реакций
func IsValidReaction(emoji string) bool {
	switch emoji {
	case ReactionStrong, ReactionParty, ReactionHeart:
		return true
	}
	return false
}

// Post анонимная публикация в ленте сообщества
type Post struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	AnonymousName string    `gorm:"not null" json:"anonymous_name"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Type          PostType  `gorm:"type:varchar(16);not null" json:"type"`
	IsHidden      bool      `gorm:"not null;index" json:"is_hidden"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName устанавливает имя таблицы для модели Post
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate генерирует идентификатор публикации
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Reaction реакция пользователя на публикацию, не более одной на эмодзи
type Reaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_post_user_emoji" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_post_user_emoji" json:"user_id"`
	Emoji     string    `gorm:"not null;uniqueIndex:idx_reaction_post_user_emoji" json:"emoji"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName устанавливает имя таблицы для модели Reaction
func (Reaction) TableName() string {
	return "reactions"
}

// BeforeCreate генерирует идентификатор реакции
func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Report жалоба на публикацию, не более одной от пользователя
type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_post_reporter" json:"post_id"`
	ReporterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_post_reporter" json:"reporter_id"`
	Reason     string    `gorm:"not null" json:"reason"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName устанавливает имя таблицы для модели Report
func (Report) TableName() string {
	return "reports"
}

// BeforeCreate генерирует идентификатор жалобы
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CreatePostRequest запрос на создание публикации
type CreatePostRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	Content string    `json:"content"`
	Type    PostType  `json:"type"`
}

// FeedRequest запрос ленты сообщества
type FeedRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Limit  int       `json:"limit,omitempty"`
}

// ReactRequest запрос на реакцию
type ReactRequest struct {
	UserID uuid.UUID `json:"user_id"`
	PostID uuid.UUID `json:"post_id"`
	Emoji  string    `json:"emoji"`
}

// ReportRequest запрос на жалобу
type ReportRequest struct {
	UserID uuid.UUID `json:"user_id"`
	PostID uuid.UUID `json:"post_id"`
	Reason string    `json:"reason"`
}

// FeedPost публикация с подсчитанными реакциями
type FeedPost struct {
	Post
	Reactions map[string]int64 `json:"reactions"`
}

// PostResponse ответ с публикацией
type PostResponse struct {
	Post *Post `json:"post"`
}

// FeedResponse ответ с лентой сообщества
type FeedResponse struct {
	Posts []FeedPost `json:"posts"`
}

// SimpleResponse представляет простой ответ с флагом успеха
type SimpleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
