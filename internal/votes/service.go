// Package votes keeps the per-target vote ledger and the denormalized
// counters derived from it.
//
// Counters (upvotes, downvotes, score) are a cache of the ledger: every
// ledger mutation is followed, in the same transaction, by a full recount
// of the target's ledger. Nothing else writes those columns.
package votes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

// Tally is the refreshed counter state returned to the voter.
type Tally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`
	UserVote  int `json:"user_vote"`
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock overrides the clock used for cast_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the ledger row id generator.
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

// ApplyVote records voterID's vote on the target and returns the recomputed
// counters. voteType 0 retracts any existing vote.
func (s *Service) ApplyVote(ctx context.Context, kind Kind, targetID, voterID string, voteType int) (Tally, error) {
	vt := models.VoteType(voteType)
	if !vt.Valid() {
		return Tally{}, apperr.InvalidArgument("Invalid vote type")
	}

	var tally Tally
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockTarget(ctx, kind, targetID); err != nil {
			return err
		}
		if err := s.mutateLedger(ctx, tx, kind, targetID, voterID, vt); err != nil {
			return err
		}
		var err error
		tally, err = recountAndPersist(ctx, tx, kind, targetID)
		return err
	})
	if err != nil {
		return Tally{}, s.classify(kind, "Failed to vote on "+kind.String(), err)
	}

	tally.UserVote = voteType
	return tally, nil
}

// Recount rebuilds the target's counters from its ledger. It is the repair
// path for counters written outside the aggregator.
func (s *Service) Recount(ctx context.Context, kind Kind, targetID string) (Tally, error) {
	var tally Tally
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockTarget(ctx, kind, targetID); err != nil {
			return err
		}
		var err error
		tally, err = recountAndPersist(ctx, tx, kind, targetID)
		return err
	})
	if err != nil {
		return Tally{}, s.classify(kind, "Failed to recount "+kind.String()+" votes", err)
	}
	return tally, nil
}

func (s *Service) mutateLedger(ctx context.Context, tx Repository, kind Kind, targetID, voterID string, vt models.VoteType) error {
	existing, err := tx.FindVote(ctx, kind, targetID, voterID)
	if err != nil {
		return err
	}

	switch {
	case vt == models.VoteNone && existing == nil:
		return nil
	case vt == models.VoteNone:
		return tx.DeleteVote(ctx, kind, targetID, voterID)
	case existing == nil:
		return tx.InsertVote(ctx, kind, Record{
			ID:       s.newID(),
			TargetID: targetID,
			VoterID:  voterID,
			VoteType: vt,
			CastAt:   s.now(),
		})
	default:
		// Same-type votes land here too; refreshing cast_at is harmless.
		return tx.UpdateVote(ctx, kind, targetID, voterID, vt, s.now())
	}
}

// recountAndPersist must run inside the transaction that mutated the
// ledger so the count sees the mutation.
func recountAndPersist(ctx context.Context, tx Repository, kind Kind, targetID string) (Tally, error) {
	c, err := tx.CountVotes(ctx, kind, targetID)
	if err != nil {
		return Tally{}, err
	}
	score := c.Upvotes - c.Downvotes
	if err := tx.WriteCounters(ctx, kind, targetID, c.Upvotes, c.Downvotes, score); err != nil {
		return Tally{}, err
	}
	return Tally{Upvotes: c.Upvotes, Downvotes: c.Downvotes, Score: score}, nil
}

func (s *Service) classify(kind Kind, msg string, err error) error {
	if errors.Is(err, ErrTargetNotFound) {
		return apperr.NotFound(kind.Label() + " not found")
	}
	return apperr.Internal(msg, err)
}
