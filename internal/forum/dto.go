package forum

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
)

// PostDTO is the list view of a thread.
type PostDTO struct {
	ID           uuid.UUID `json:"id"`
	AuthorID     uuid.UUID `json:"author_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Tags         []string  `json:"tags"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PostDetailDTO is the full thread with replies.
type PostDetailDTO struct {
	PostDTO
	Comments []CommentDTO `json:"comments"`
}

// CommentDTO is one reply on a thread.
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPostDTO maps the model and its comment count.
func NewPostDTO(post *models.ForumPost, commentCount int) *PostDTO {
	return &PostDTO{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		Title:        post.Title,
		Body:         post.Body,
		Tags:         append([]string{}, post.Tags...),
		CommentCount: commentCount,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
}

// NewPostDetailDTO maps the model with its loaded comments.
func NewPostDetailDTO(post *models.ForumPost) *PostDetailDTO {
	detail := &PostDetailDTO{
		PostDTO:  *NewPostDTO(post, len(post.Comments)),
		Comments: make([]CommentDTO, len(post.Comments)),
	}
	for i, comment := range post.Comments {
		detail.Comments[i] = *NewCommentDTO(&comment)
	}
	return detail
}

// NewCommentDTO maps a single reply.
func NewCommentDTO(comment *models.ForumComment) *CommentDTO {
	return &CommentDTO{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}
