package models

import "time"

// Post types accepted on create.
const (
	PostTypeText  = "text"
	PostTypeLink  = "link"
	PostTypeImage = "image"
)

type Post struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	Title        string     `gorm:"size:300;not null" json:"title"`
	Body         *string    `json:"body"`
	Type         string     `gorm:"size:16;not null" json:"type"`
	URL          *string    `json:"url"`
	CommunityID  string     `gorm:"type:uuid;not null;index:idx_posts_community_created,priority:1" json:"community_id"`
	Community    *Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID     string     `gorm:"not null;index" json:"author_id"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_posts_community_created,priority:2" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	Upvotes      int        `gorm:"not null;default:0" json:"upvotes"`
	Downvotes    int        `gorm:"not null;default:0" json:"downvotes"`
	Score        int        `gorm:"not null;default:0;index" json:"score"`
	CommentCount int        `gorm:"not null;default:0" json:"comment_count"`
	IsDeleted    bool       `gorm:"not null;default:false" json:"-"`

	Votes []PostVote `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// ValidPostType reports whether t is one of the accepted post types.
func ValidPostType(t string) bool {
	switch t {
	case PostTypeText, PostTypeLink, PostTypeImage:
		return true
	}
	return false
}

type CreatePostRequest struct {
	Title         string `json:"title" binding:"required,max=300"`
	Body          string `json:"body"`
	Type          string `json:"type" binding:"required"`
	URL           string `json:"url"`
	CommunityName string `json:"community_name"`
}

type UpdatePostRequest struct {
	Title string `json:"title" binding:"max=300"`
	Body  string `json:"body"`
}

// VoteRequest is shared by post and comment votes. The pointer lets an
// explicit 0 (retract) pass the required check.
type VoteRequest struct {
	VoteType *int `json:"vote_type" binding:"required,oneof=-1 0 1"`
}
