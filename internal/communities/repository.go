package communities

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// Membership is a community as seen by one of its members.
type Membership struct {
	models.Community
	Role string `json:"role"`
}

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	List(ctx context.Context) ([]models.Community, error)
	// FindByName returns nil when no community has that name. With lock set
	// the row stays locked until the transaction ends.
	FindByName(ctx context.Context, name string, lock bool) (*models.Community, error)
	Insert(ctx context.Context, c *models.Community) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	FindMembership(ctx context.Context, communityID, userID string) (*models.CommunityMembership, error)
	ListForUser(ctx context.Context, userID string) ([]Membership, error)
	InsertMembership(ctx context.Context, m *models.CommunityMembership) error
	DeleteMembership(ctx context.Context, communityID, userID string) error
	RecountMembers(ctx context.Context, communityID string) error
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

func (r *GormRepository) List(ctx context.Context) ([]models.Community, error) {
	out := []models.Community{}
	err := r.db.WithContext(ctx).Order("member_count DESC").Order("name ASC").Find(&out).Error
	return out, err
}

func (r *GormRepository) FindByName(ctx context.Context, name string, lock bool) (*models.Community, error) {
	q := r.db.WithContext(ctx).Where("name = ?", name)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c models.Community
	err := q.Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepository) Insert(ctx context.Context, c *models.Community) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Community{}).Where("id = ?", id).Updates(fields).Error
}

func (r *GormRepository) FindMembership(ctx context.Context, communityID, userID string) (*models.CommunityMembership, error) {
	var m models.CommunityMembership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormRepository) ListForUser(ctx context.Context, userID string) ([]Membership, error) {
	out := []Membership{}
	err := r.db.WithContext(ctx).
		Table("communities").
		Select("communities.*, community_memberships.role").
		Joins("JOIN community_memberships ON community_memberships.community_id = communities.id").
		Where("community_memberships.user_id = ?", userID).
		Order("communities.name ASC").
		Scan(&out).Error
	return out, err
}

func (r *GormRepository) InsertMembership(ctx context.Context, m *models.CommunityMembership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GormRepository) DeleteMembership(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityMembership{}).Error
}

func (r *GormRepository) RecountMembers(ctx context.Context, communityID string) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE communities SET member_count = (SELECT COUNT(*) FROM community_memberships WHERE community_id = ?) WHERE id = ?",
		communityID, communityID).Error
}
