package posts

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// View is a post with the names of its community.
type View struct {
	models.Post
	CommunityName        string `json:"community_name"`
	CommunityDisplayName string `json:"community_display_name"`
}

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// LockCommunity locks the named community row, or returns nil when
	// there is none.
	LockCommunity(ctx context.Context, name string) (*models.Community, error)
	LockCommunityByID(ctx context.Context, id string) error
	RecountPosts(ctx context.Context, communityID string) error

	Insert(ctx context.Context, p *models.Post) error
	// Find returns the post whether or not it is deleted, or nil.
	Find(ctx context.Context, id string) (*models.Post, error)
	// View returns a live post, or nil.
	View(ctx context.Context, id string) (*View, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ Repository = (*GormRepository)(nil)

func (r *GormRepository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) LockCommunity(ctx context.Context, name string) (*models.Community, error) {
	var c models.Community
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepository) LockCommunityByID(ctx context.Context, id string) error {
	var ids []string
	return r.db.WithContext(ctx).
		Model(&models.Community{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Pluck("id", &ids).Error
}

func (r *GormRepository) RecountPosts(ctx context.Context, communityID string) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE communities SET post_count = (SELECT COUNT(*) FROM posts WHERE community_id = ? AND is_deleted = false) WHERE id = ?",
		communityID, communityID).Error
}

func (r *GormRepository) Insert(ctx context.Context, p *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *GormRepository) Find(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) View(ctx context.Context, id string) (*View, error) {
	var out []View
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, communities.name AS community_name, communities.display_name AS community_display_name").
		Joins("LEFT JOIN communities ON communities.id = posts.community_id").
		Where("posts.id = ? AND posts.is_deleted = ?", id, false).
		Limit(1).
		Scan(&out).Error
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func (r *GormRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields).Error
}

func softDeleteFields(at time.Time) map[string]interface{} {
	return map[string]interface{}{"is_deleted": true, "updated_at": at}
}
