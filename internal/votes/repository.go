package votes

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// ErrTargetNotFound is returned by LockTarget when the target is missing or
// soft-deleted.
var ErrTargetNotFound = errors.New("vote target not found")

// Record is one row of the vote ledger.
type Record struct {
	ID       string
	TargetID string
	VoterID  string
	VoteType models.VoteType
	CastAt   time.Time
}

// Counts is the ledger aggregate for one target.
type Counts struct {
	Upvotes   int
	Downvotes int
}

// Repository is the ledger and counter storage the aggregator runs against.
type Repository interface {
	// Transaction runs fn against a repository bound to a single storage
	// transaction. A non-nil error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// LockTarget locks the live target row until the transaction ends.
	LockTarget(ctx context.Context, kind Kind, targetID string) error

	// FindVote returns the voter's live record, or nil when there is none.
	FindVote(ctx context.Context, kind Kind, targetID, voterID string) (*Record, error)
	InsertVote(ctx context.Context, kind Kind, rec Record) error
	UpdateVote(ctx context.Context, kind Kind, targetID, voterID string, voteType models.VoteType, castAt time.Time) error
	DeleteVote(ctx context.Context, kind Kind, targetID, voterID string) error

	CountVotes(ctx context.Context, kind Kind, targetID string) (Counts, error)
	WriteCounters(ctx context.Context, kind Kind, targetID string, upvotes, downvotes, score int) error
}

// GormRepository stores the ledger in post_votes / comment_votes.
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

func (r *GormRepository) LockTarget(ctx context.Context, kind Kind, targetID string) error {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(kind.targetModel()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = ?", targetID, false).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrTargetNotFound
	}
	return nil
}

func (r *GormRepository) FindVote(ctx context.Context, kind Kind, targetID, voterID string) (*Record, error) {
	var rec Record
	res := r.db.WithContext(ctx).
		Model(kind.voteModel()).
		Select("id, "+kind.voteColumn()+" AS target_id, user_id AS voter_id, vote_type, created_at AS cast_at").
		Where(kind.voteColumn()+" = ? AND user_id = ?", targetID, voterID).
		Limit(1).
		Scan(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *GormRepository) InsertVote(ctx context.Context, kind Kind, rec Record) error {
	return r.db.WithContext(ctx).
		Model(kind.voteModel()).
		Create(map[string]interface{}{
			"id":              rec.ID,
			kind.voteColumn(): rec.TargetID,
			"user_id":         rec.VoterID,
			"vote_type":       int(rec.VoteType),
			"created_at":      rec.CastAt,
		}).Error
}

func (r *GormRepository) UpdateVote(ctx context.Context, kind Kind, targetID, voterID string, voteType models.VoteType, castAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(kind.voteModel()).
		Where(kind.voteColumn()+" = ? AND user_id = ?", targetID, voterID).
		Updates(map[string]interface{}{
			"vote_type":  int(voteType),
			"created_at": castAt,
		}).Error
}

func (r *GormRepository) DeleteVote(ctx context.Context, kind Kind, targetID, voterID string) error {
	return r.db.WithContext(ctx).
		Where(kind.voteColumn()+" = ? AND user_id = ?", targetID, voterID).
		Delete(kind.voteModel()).Error
}

func (r *GormRepository) CountVotes(ctx context.Context, kind Kind, targetID string) (Counts, error) {
	var c Counts
	err := r.db.WithContext(ctx).
		Model(kind.voteModel()).
		Select("COUNT(CASE WHEN vote_type = 1 THEN 1 END) AS upvotes, COUNT(CASE WHEN vote_type = -1 THEN 1 END) AS downvotes").
		Where(kind.voteColumn()+" = ?", targetID).
		Scan(&c).Error
	return c, err
}

func (r *GormRepository) WriteCounters(ctx context.Context, kind Kind, targetID string, upvotes, downvotes, score int) error {
	return r.db.WithContext(ctx).
		Model(kind.targetModel()).
		Where("id = ?", targetID).
		Updates(map[string]interface{}{
			"upvotes":   upvotes,
			"downvotes": downvotes,
			"score":     score,
		}).Error
}
