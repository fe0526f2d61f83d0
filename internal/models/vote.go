package models

import "time"

// VoteType is a signed vote. Zero means "no vote" and is never stored:
// a retracted vote is represented by the absence of a ledger row.
type VoteType int

const (
	VoteDown VoteType = -1
	VoteNone VoteType = 0
	VoteUp   VoteType = 1
)

// Valid reports whether v is one of -1, 0 or 1.
func (v VoteType) Valid() bool {
	return v == VoteDown || v == VoteNone || v == VoteUp
}

// PostVote is one voter's live vote on a post.
type PostVote struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_votes_post_user;index:idx_post_votes_post" json:"post_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_post_votes_post_user" json:"user_id"`
	VoteType  VoteType  `gorm:"not null;check:vote_type IN (-1, 1)" json:"vote_type"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// CommentVote is one voter's live vote on a comment.
type CommentVote struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CommentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_comment_votes_comment_user;index:idx_comment_votes_comment" json:"comment_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_comment_votes_comment_user" json:"user_id"`
	VoteType  VoteType  `gorm:"not null;check:vote_type IN (-1, 1)" json:"vote_type"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
