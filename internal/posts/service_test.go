package posts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

type memRepo struct {
	communities map[string]*models.Community
	posts       map[string]*models.Post
	insertErr   error
}

func newMemRepo() *memRepo {
	return &memRepo{
		communities: map[string]*models.Community{
			"general": {ID: "c-general", Name: "general", DisplayName: "General"},
			"golang":  {ID: "c-golang", Name: "golang", DisplayName: "Go"},
		},
		posts: map[string]*models.Post{},
	}
}

func (m *memRepo) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return fn(m)
}

func (m *memRepo) LockCommunity(ctx context.Context, name string) (*models.Community, error) {
	c, ok := m.communities[name]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) LockCommunityByID(ctx context.Context, id string) error { return nil }

func (m *memRepo) RecountPosts(ctx context.Context, communityID string) error {
	n := 0
	for _, p := range m.posts {
		if p.CommunityID == communityID && !p.IsDeleted {
			n++
		}
	}
	for _, c := range m.communities {
		if c.ID == communityID {
			c.PostCount = n
		}
	}
	return nil
}

func (m *memRepo) Insert(ctx context.Context, p *models.Post) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepo) Find(ctx context.Context, id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) View(ctx context.Context, id string) (*View, error) {
	p, ok := m.posts[id]
	if !ok || p.IsDeleted {
		return nil, nil
	}
	for _, c := range m.communities {
		if c.ID == p.CommunityID {
			return &View{Post: *p, CommunityName: c.Name, CommunityDisplayName: c.DisplayName}, nil
		}
	}
	return &View{Post: *p}, nil
}

func (m *memRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	p := m.posts[id]
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "body":
			p.Body = v.(*string)
		case "is_deleted":
			p.IsDeleted = v.(bool)
		case "updated_at":
			at := v.(time.Time)
			p.UpdatedAt = &at
		}
	}
	return nil
}

func newTestService(repo Repository) *Service {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewService(repo, WithClock(func() time.Time { return now }))
}

func TestCreateDefaultsToGeneral(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	v, err := svc.Create(context.Background(), "alice", models.CreatePostRequest{
		Title: "  Hello  ", Body: "world", Type: models.PostTypeText,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", v.Title)
	assert.Equal(t, "general", v.CommunityName)
	assert.Equal(t, "c-general", v.CommunityID)
	require.NotNil(t, v.Body)
	assert.Equal(t, "world", *v.Body)
	assert.Nil(t, v.URL)
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, 1, repo.communities["general"].PostCount)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreatePostRequest
		msg  string
	}{
		{"blank title", models.CreatePostRequest{Title: " ", Type: "text"}, "Title and type are required"},
		{"bad type", models.CreatePostRequest{Title: "t", Type: "video"}, "Invalid post type"},
		{"link without url", models.CreatePostRequest{Title: "t", Type: "link"}, "URL is required for link/image posts"},
		{"long title", models.CreatePostRequest{Title: strings.Repeat("x", 301), Type: "text"}, "Title too long (max 300 characters)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "alice", tt.req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
			assert.Equal(t, tt.msg, apperr.MessageOf(err))
		})
	}

	_, err := svc.Create(ctx, "alice", models.CreatePostRequest{Title: "t", Type: "text", CommunityName: "nowhere"})
	assert.Equal(t, "Community not found", apperr.MessageOf(err))
}

func TestCreateStorageFailure(t *testing.T) {
	repo := newMemRepo()
	repo.insertErr = errors.New("disk full")
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), "alice", models.CreatePostRequest{Title: "t", Type: "text"})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Failed to create post", apperr.MessageOf(err))
}

func TestEditAndDelete(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	v, err := svc.Create(ctx, "alice", models.CreatePostRequest{
		Title: "Link", Type: models.PostTypeLink, URL: "https://go.dev", CommunityName: "GoLang",
	})
	require.NoError(t, err)
	assert.Equal(t, "golang", v.CommunityName)

	_, err = svc.Edit(ctx, v.ID, "bob", models.UpdatePostRequest{Title: "mine now"})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	edited, err := svc.Edit(ctx, v.ID, "alice", models.UpdatePostRequest{Body: "the Go site"})
	require.NoError(t, err)
	assert.Equal(t, "Link", edited.Title)
	require.NotNil(t, edited.Body)
	assert.Equal(t, "the Go site", *edited.Body)
	assert.NotNil(t, edited.UpdatedAt)

	assert.True(t, errors.Is(svc.Delete(ctx, v.ID, "bob"), apperr.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, v.ID, "alice"))
	assert.Equal(t, 0, repo.communities["golang"].PostCount)

	_, err = svc.Get(ctx, v.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, v.ID, "alice"), apperr.ErrNotFound))
}
