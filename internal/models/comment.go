package models

import "time"

type Comment struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	PostID     string     `gorm:"type:uuid;not null;index:idx_comments_post_created,priority:1;index:idx_comments_post_parent,priority:1" json:"post_id"`
	Post       *Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID   string     `gorm:"not null;index" json:"author_id"`
	ParentID   *string    `gorm:"type:uuid;index;index:idx_comments_post_parent,priority:2" json:"parent_id"`
	Parent     *Comment   `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Body       string     `gorm:"not null" json:"body"`
	CreatedAt  time.Time  `gorm:"not null;index:idx_comments_post_created,priority:2" json:"created_at"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	Upvotes    int        `gorm:"not null;default:0" json:"upvotes"`
	Downvotes  int        `gorm:"not null;default:0" json:"downvotes"`
	Score      int        `gorm:"not null;default:0;index" json:"score"`
	ReplyCount int        `gorm:"not null;default:0" json:"reply_count"`
	Depth      int        `gorm:"not null;default:0" json:"depth"`
	IsDeleted  bool       `gorm:"not null;default:false" json:"is_deleted"`
	DeletedBy  *string    `json:"-"`

	Votes []CommentVote `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
}

type CreateCommentRequest struct {
	Body     string  `json:"body"`
	ParentID *string `json:"parent_id,omitempty"`
}

type UpdateCommentRequest struct {
	Body string `json:"body"`
}
