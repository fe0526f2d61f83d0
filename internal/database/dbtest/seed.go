package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

func SeedCommunity(t *testing.T, db *gorm.DB, name string) models.Community {
	t.Helper()
	c := models.Community{
		ID:          uuid.NewString(),
		Name:        name,
		DisplayName: name,
		CreatedBy:   "seed",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// SeedPost inserts a text post. Counter columns are taken from p as given.
func SeedPost(t *testing.T, db *gorm.DB, p models.Post) models.Post {
	t.Helper()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Title == "" {
		p.Title = "seeded post"
	}
	if p.Type == "" {
		p.Type = models.PostTypeText
	}
	if p.AuthorID == "" {
		p.AuthorID = "seed-author"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func SeedComment(t *testing.T, db *gorm.DB, c models.Comment) models.Comment {
	t.Helper()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Body == "" {
		c.Body = "seeded comment"
	}
	if c.AuthorID == "" {
		c.AuthorID = "seed-author"
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}
