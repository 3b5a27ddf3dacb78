package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ForumPost is a discussion thread opened by any authenticated user.
type ForumPost struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID  uuid.UUID      `gorm:"column:author_id;type:uuid;not null;index"`
	Title     string         `gorm:"column:title;not null"`
	Body      string         `gorm:"column:body;not null"`
	Tags      pq.StringArray `gorm:"column:tags;type:text[]"`
	Comments  []ForumComment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// ForumComment is a reply on a post.
type ForumComment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
