package comments

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// ErrPostNotFound is returned when the post row does not exist at all.
var ErrPostNotFound = errors.New("post not found")

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// LockPost locks the post row for the rest of the transaction and
	// reports whether it is soft-deleted.
	LockPost(ctx context.Context, postID string) (deleted bool, err error)
	PostLive(ctx context.Context, postID string) (bool, error)

	// ListByPost returns the post's live comments up to maxDepth, oldest first.
	ListByPost(ctx context.Context, postID string, maxDepth int) ([]models.Comment, error)
	// Find returns the comment whether or not it is deleted, or nil.
	Find(ctx context.Context, id string) (*models.Comment, error)
	Insert(ctx context.Context, c *models.Comment) error
	UpdateBody(ctx context.Context, id, body string, at time.Time) error
	SoftDelete(ctx context.Context, id, deletedBy string, at time.Time) error

	RecountComments(ctx context.Context, postID string) error
	RecountReplies(ctx context.Context, commentID string) error
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

func (r *GormRepository) LockPost(ctx context.Context, postID string) (bool, error) {
	var flags []bool
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", postID).
		Pluck("is_deleted", &flags).Error
	if err != nil {
		return false, err
	}
	if len(flags) == 0 {
		return false, ErrPostNotFound
	}
	return flags[0], nil
}

func (r *GormRepository) PostLive(ctx context.Context, postID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", postID, false).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepository) ListByPost(ctx context.Context, postID string, maxDepth int) ([]models.Comment, error) {
	out := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND is_deleted = ? AND depth <= ?", postID, false, maxDepth).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) Find(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepository) Insert(ctx context.Context, c *models.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormRepository) UpdateBody(ctx context.Context, id, body string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"body": body, "updated_at": at}).Error
}

func (r *GormRepository) SoftDelete(ctx context.Context, id, deletedBy string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_by": deletedBy, "updated_at": at}).Error
}

func (r *GormRepository) RecountComments(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE posts SET comment_count = (SELECT COUNT(*) FROM comments WHERE post_id = ? AND is_deleted = false) WHERE id = ?",
		postID, postID).Error
}

func (r *GormRepository) RecountReplies(ctx context.Context, commentID string) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE comments SET reply_count = (SELECT COUNT(*) FROM comments AS c WHERE c.parent_id = ? AND c.is_deleted = false) WHERE id = ?",
		commentID, commentID).Error
}
