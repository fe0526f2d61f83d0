package models

import "time"

// Membership roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// DefaultCommunity receives posts created without a community name.
const DefaultCommunity = "general"

type Community struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	Description *string   `json:"description"`
	CreatedBy   string    `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	MemberCount int       `gorm:"not null;default:0" json:"member_count"`
	PostCount   int       `gorm:"not null;default:0" json:"post_count"`
	IsPrivate   bool      `gorm:"not null;default:false" json:"is_private"`
}

type CommunityMembership struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	CommunityID string     `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_community_user" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"-"`
	UserID      string     `gorm:"not null;uniqueIndex:idx_memberships_community_user;index" json:"user_id"`
	JoinedAt    time.Time  `gorm:"not null" json:"joined_at"`
	Role        string     `gorm:"size:16;not null;default:member" json:"role"`
}

type CreateCommunityRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=20"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	Description string `json:"description"`
}

type MembershipRequest struct {
	Action string `json:"action" binding:"required,oneof=join leave"`
}

// UpdateCommunityRequest leaves absent fields unchanged.
type UpdateCommunityRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"is_private"`
}
