// Package comments stores threaded comments and assembles them into
// reply forests.
package comments

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

const (
	// MaxDepth is the deepest a reply may nest; top-level comments are 0.
	MaxDepth      = 2
	MaxBodyLength = 10000
	EditWindow    = 10 * time.Minute
)

// ParseMaxDepth reads the maxDepth query value. Missing or malformed values
// mean MaxDepth; the result is clamped to [0, MaxDepth].
func ParseMaxDepth(raw string) int {
	d, err := strconv.Atoi(raw)
	if err != nil {
		return MaxDepth
	}
	return min(max(d, 0), MaxDepth)
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the comment forest of a live post.
func (s *Service) List(ctx context.Context, postID string, maxDepth int) ([]*Node, error) {
	live, err := s.repo.PostLive(ctx, postID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comments", err)
	}
	if !live {
		return nil, apperr.NotFound("Post not found")
	}

	flat, err := s.repo.ListByPost(ctx, postID, maxDepth)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comments", err)
	}
	return BuildForest(flat), nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Comment, error) {
	c, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comment", err)
	}
	if c == nil || c.IsDeleted {
		return nil, apperr.NotFound("Comment not found")
	}
	return c, nil
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperr.InvalidArgument("Comment body is required")
	}
	if len([]rune(body)) > MaxBodyLength {
		return "", apperr.InvalidArgument("Comment too long (max 10000 characters)")
	}
	return body, nil
}

// Create adds a top-level comment, or a reply when parentID is set.
func (s *Service) Create(ctx context.Context, postID, authorID, body string, parentID *string) (*models.Comment, error) {
	body, err := validateBody(body)
	if err != nil {
		return nil, err
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if _, err := uuid.Parse(*parentID); err != nil {
			return nil, apperr.NotFound("Parent comment not found")
		}
	}

	c := &models.Comment{
		ID:       s.newID(),
		PostID:   postID,
		AuthorID: authorID,
		ParentID: parentID,
		Body:     body,
	}
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		deleted, err := tx.LockPost(ctx, postID)
		if errors.Is(err, ErrPostNotFound) || (err == nil && deleted) {
			return apperr.NotFound("Post not found")
		}
		if err != nil {
			return err
		}

		if parentID != nil {
			parent, err := tx.Find(ctx, *parentID)
			if err != nil {
				return err
			}
			if parent == nil || parent.IsDeleted || parent.PostID != postID {
				return apperr.NotFound("Parent comment not found")
			}
			c.Depth = parent.Depth + 1
			if c.Depth > MaxDepth {
				return apperr.InvalidArgument("Maximum nesting depth reached")
			}
		}

		c.CreatedAt = s.now()
		if err := tx.Insert(ctx, c); err != nil {
			return err
		}
		return s.recount(ctx, tx, postID, parentID)
	})
	if err != nil {
		return nil, apperr.Wrap("Failed to create comment", err)
	}
	return c, nil
}

// Edit replaces the body of the author's own comment within EditWindow of
// its creation.
func (s *Service) Edit(ctx context.Context, id, authorID, body string) (*models.Comment, error) {
	body, err := validateBody(body)
	if err != nil {
		return nil, err
	}

	c, err := s.owned(ctx, id, authorID, "You can only edit your own comments")
	if err != nil {
		return nil, err
	}
	now := s.now()
	if now.Sub(c.CreatedAt) > EditWindow {
		return nil, apperr.InvalidArgument("Edit time limit exceeded (10 minutes)")
	}

	if err := s.repo.UpdateBody(ctx, id, body, now); err != nil {
		return nil, apperr.Internal("Failed to update comment", err)
	}
	c.Body = body
	c.UpdatedAt = &now
	return c, nil
}

// Delete soft-deletes the author's own comment. Replies stay in place.
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		c, err := tx.Find(ctx, id)
		if err != nil {
			return err
		}
		if c == nil || c.IsDeleted {
			return apperr.NotFound("Comment not found")
		}
		if _, err := tx.LockPost(ctx, c.PostID); err != nil {
			return err
		}
		// Re-read under the post lock; a concurrent delete may have won.
		if c, err = tx.Find(ctx, id); err != nil {
			return err
		}
		if c == nil || c.IsDeleted {
			return apperr.NotFound("Comment not found")
		}
		if c.AuthorID != authorID {
			return apperr.Forbidden("You can only delete your own comments")
		}

		if err := tx.SoftDelete(ctx, id, authorID, s.now()); err != nil {
			return err
		}
		return s.recount(ctx, tx, c.PostID, c.ParentID)
	})
	return apperr.Wrap("Failed to delete comment", err)
}

func (s *Service) owned(ctx context.Context, id, authorID, forbidden string) (*models.Comment, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != authorID {
		return nil, apperr.Forbidden(forbidden)
	}
	return c, nil
}

// recount refreshes every counter a comment mutation can change.
func (s *Service) recount(ctx context.Context, tx Repository, postID string, parentID *string) error {
	if err := tx.RecountComments(ctx, postID); err != nil {
		return err
	}
	if parentID != nil {
		return tx.RecountReplies(ctx, *parentID)
	}
	return nil
}
