// Package posts handles post authoring. Ranking and listing live in
// package feed; votes in package votes.
package posts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

const MaxTitleLength = 300

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
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

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	v, err := s.repo.View(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch post", err)
	}
	if v == nil {
		return nil, apperr.NotFound("Post not found")
	}
	return v, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Create publishes a post. Posts without a community go to
// models.DefaultCommunity.
func (s *Service) Create(ctx context.Context, authorID string, req models.CreatePostRequest) (*View, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.Type == "" {
		return nil, apperr.InvalidArgument("Title and type are required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return nil, apperr.InvalidArgument("Title too long (max 300 characters)")
	}
	if !models.ValidPostType(req.Type) {
		return nil, apperr.InvalidArgument("Invalid post type")
	}
	url := optional(req.URL)
	if req.Type != models.PostTypeText && url == nil {
		return nil, apperr.InvalidArgument("URL is required for link/image posts")
	}
	communityName := strings.ToLower(strings.TrimSpace(req.CommunityName))
	if communityName == "" {
		communityName = models.DefaultCommunity
	}

	p := &models.Post{
		ID:       s.newID(),
		Title:    title,
		Body:     optional(req.Body),
		Type:     req.Type,
		URL:      url,
		AuthorID: authorID,
	}
	var community *models.Community
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		community, err = tx.LockCommunity(ctx, communityName)
		if err != nil {
			return err
		}
		if community == nil {
			return apperr.NotFound("Community not found")
		}

		p.CommunityID = community.ID
		p.CreatedAt = s.now()
		if err := tx.Insert(ctx, p); err != nil {
			return err
		}
		return tx.RecountPosts(ctx, community.ID)
	})
	if err != nil {
		return nil, apperr.Wrap("Failed to create post", err)
	}

	return &View{
		Post:                 *p,
		CommunityName:        community.Name,
		CommunityDisplayName: community.DisplayName,
	}, nil
}

// Edit changes the title and/or body of the author's own post.
func (s *Service) Edit(ctx context.Context, id, authorID string, req models.UpdatePostRequest) (*View, error) {
	p, err := s.owned(ctx, id, authorID, "You can only edit your own posts")
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": s.now()}
	if title := strings.TrimSpace(req.Title); title != "" {
		if len([]rune(title)) > MaxTitleLength {
			return nil, apperr.InvalidArgument("Title too long (max 300 characters)")
		}
		fields["title"] = title
	}
	if req.Body != "" {
		fields["body"] = optional(req.Body)
	}
	if err := s.repo.Update(ctx, p.ID, fields); err != nil {
		return nil, apperr.Internal("Failed to update post", err)
	}
	return s.Get(ctx, p.ID)
}

// Delete soft-deletes the author's own post. Its votes and comments stay.
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	p, err := s.owned(ctx, id, authorID, "You can only delete your own posts")
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockCommunityByID(ctx, p.CommunityID); err != nil {
			return err
		}
		if err := tx.Update(ctx, p.ID, softDeleteFields(s.now())); err != nil {
			return err
		}
		return tx.RecountPosts(ctx, p.CommunityID)
	})
	return apperr.Wrap("Failed to delete post", err)
}

func (s *Service) owned(ctx context.Context, id, authorID, forbidden string) (*models.Post, error) {
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch post", err)
	}
	if p == nil || p.IsDeleted {
		return nil, apperr.NotFound("Post not found")
	}
	if p.AuthorID != authorID {
		return nil, apperr.Forbidden(forbidden)
	}
	return p, nil
}
