package forum

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

// Repository exposes persistence operations for discussion posts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a forum repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePost inserts a new thread.
func (r *Repository) CreatePost(ctx context.Context, post *models.ForumPost) (*models.ForumPost, error) {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// FindPostByID loads a post with its comments, oldest comment first.
func (r *Repository) FindPostByID(ctx context.Context, id uuid.UUID) (*models.ForumPost, error) {
	var post models.ForumPost
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("forum_comments.created_at ASC")
		}).
		First(&post, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns a page of posts, newest first, without comments.
func (r *Repository) ListPosts(ctx context.Context, page pagination.Params) ([]models.ForumPost, error) {
	page = page.Normalize()
	var out []models.ForumPost
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountComments returns comment counts keyed by post id.
func (r *Repository) CountComments(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type row struct {
		PostID uuid.UUID
		Total  int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.ForumComment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, entry := range rows {
		counts[entry.PostID] = entry.Total
	}
	return counts, nil
}

// DeletePost removes the thread; comments cascade.
func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("post_id = ?", id).Delete(&models.ForumComment{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.ForumPost{}).Error
}

// CreateComment inserts a reply.
func (r *Repository) CreateComment(ctx context.Context, comment *models.ForumComment) (*models.ForumComment, error) {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// FindCommentByID loads a single comment.
func (r *Repository) FindCommentByID(ctx context.Context, id uuid.UUID) (*models.ForumComment, error) {
	var comment models.ForumComment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a single comment.
func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ForumComment{}).Error
}
