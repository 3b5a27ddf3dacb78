package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

const maxTags = 10

// Service exposes the community discussion operations.
type Service interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*PostDTO, error)
	ListPosts(ctx context.Context, page pagination.Params) ([]PostDTO, error)
	GetPost(ctx context.Context, postID uuid.UUID) (*PostDetailDTO, error)
	DeletePost(ctx context.Context, actorID, postID uuid.UUID) error
	CreateComment(ctx context.Context, authorID, postID uuid.UUID, body string) (*CommentDTO, error)
	DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error
}

// CreatePostInput is the validated new-thread payload.
type CreatePostInput struct {
	Title string
	Body  string
	Tags  []string
}

type service struct {
	repo *Repository
}

// NewService constructs a forum service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("forum repository required")
	}
	return &service{repo: repo}, nil
}

// CreatePost opens a thread. Tags are trimmed, lowercased, and deduplicated.
func (s *service) CreatePost(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*PostDTO, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body is required")
	}
	tags := normalizeTags(input.Tags)
	if len(tags) > maxTags {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many tags")
	}

	post := &models.ForumPost{
		AuthorID: authorID,
		Title:    strings.TrimSpace(input.Title),
		Body:     input.Body,
		Tags:     pq.StringArray(tags),
	}
	created, err := s.repo.CreatePost(ctx, post)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert post")
	}
	return NewPostDTO(created, 0), nil
}

// ListPosts returns a page of threads with comment counts, newest first.
func (s *service) ListPosts(ctx context.Context, page pagination.Params) ([]PostDTO, error) {
	posts, err := s.repo.ListPosts(ctx, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list posts")
	}

	ids := make([]uuid.UUID, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	counts, err := s.repo.CountComments(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count comments")
	}

	out := make([]PostDTO, len(posts))
	for i := range posts {
		out[i] = *NewPostDTO(&posts[i], counts[posts[i].ID])
	}
	return out, nil
}

// GetPost returns the full thread with replies.
func (s *service) GetPost(ctx context.Context, postID uuid.UUID) (*PostDetailDTO, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return NewPostDetailDTO(post), nil
}

// DeletePost removes the author's own thread and its replies.
func (s *service) DeletePost(ctx context.Context, actorID, postID uuid.UUID) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "post belongs to another author")
	}
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete post")
	}
	return nil
}

// CreateComment replies to an existing thread.
func (s *service) CreateComment(ctx context.Context, authorID, postID uuid.UUID, body string) (*CommentDTO, error) {
	if strings.TrimSpace(body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body is required")
	}
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.ForumComment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	}
	created, err := s.repo.CreateComment(ctx, comment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert comment")
	}
	return NewCommentDTO(created), nil
}

// DeleteComment removes the author's own reply.
func (s *service) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error {
	comment, err := s.repo.FindCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load comment")
	}
	if comment.AuthorID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "comment belongs to another author")
	}
	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete comment")
	}
	return nil
}

func (s *service) loadPost(ctx context.Context, postID uuid.UUID) (*models.ForumPost, error) {
	post, err := s.repo.FindPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load post")
	}
	return post, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
