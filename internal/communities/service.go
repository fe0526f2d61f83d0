// Package communities manages communities and their memberships.
package communities

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

const (
	ActionJoin  = "join"
	ActionLeave = "leave"
)

var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	underscoresOnly = regexp.MustCompile(`^_+$`)
)

// ValidName reports whether name may be used for a new community.
func ValidName(name string) bool {
	return namePattern.MatchString(name) && !underscoresOnly.MatchString(name)
}

// Details is a community as seen by a possibly anonymous viewer.
type Details struct {
	models.Community
	IsMember bool `json:"is_member"`
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context) ([]models.Community, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch communities", err)
	}
	return out, nil
}

// Details looks a community up by name. userID may be empty.
func (s *Service) Details(ctx context.Context, name, userID string) (Details, error) {
	c, err := s.repo.FindByName(ctx, strings.ToLower(name), false)
	if err != nil {
		return Details{}, apperr.Internal("Failed to fetch community", err)
	}
	if c == nil {
		return Details{}, apperr.NotFound("Community not found")
	}

	d := Details{Community: *c}
	if userID != "" {
		m, err := s.repo.FindMembership(ctx, c.ID, userID)
		if err != nil {
			return Details{}, apperr.Internal("Failed to fetch community", err)
		}
		d.IsMember = m != nil
	}
	return d, nil
}

func (s *Service) Mine(ctx context.Context, userID string) ([]Membership, error) {
	out, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch user communities", err)
	}
	return out, nil
}

// NameAvailable reports whether name is valid and not yet taken.
func (s *Service) NameAvailable(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, apperr.InvalidArgument("Community name is required")
	}
	if !ValidName(name) {
		return false, apperr.InvalidArgument("Invalid community name format")
	}
	c, err := s.repo.FindByName(ctx, strings.ToLower(name), false)
	if err != nil {
		return false, apperr.Internal("Can't validate community name", err)
	}
	return c == nil, nil
}

// Create makes userID the admin and first member of a new community.
func (s *Service) Create(ctx context.Context, userID string, req models.CreateCommunityRequest) (*models.Community, error) {
	if !ValidName(req.Name) {
		return nil, apperr.InvalidArgument("Invalid community name format")
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, apperr.InvalidArgument("Name and display name are required")
	}

	now := s.now()
	c := &models.Community{
		ID:          s.newID(),
		Name:        strings.ToLower(req.Name),
		DisplayName: displayName,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		c.Description = &d
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.FindByName(ctx, c.Name, false)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("Community name already exists")
		}
		if err := tx.Insert(ctx, c); err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("Community name already exists")
			}
			return err
		}
		if err := tx.InsertMembership(ctx, &models.CommunityMembership{
			ID:          s.newID(),
			CommunityID: c.ID,
			UserID:      userID,
			JoinedAt:    now,
			Role:        models.RoleAdmin,
		}); err != nil {
			return err
		}
		return tx.RecountMembers(ctx, c.ID)
	})
	if err != nil {
		return nil, apperr.Wrap("Failed to create community", err)
	}
	c.MemberCount = 1
	return c, nil
}

// SetMembership joins or leaves the named community and returns the
// resulting membership state.
func (s *Service) SetMembership(ctx context.Context, name, userID, action string) (bool, error) {
	if action != ActionJoin && action != ActionLeave {
		return false, apperr.InvalidArgument("Invalid action")
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		c, err := tx.FindByName(ctx, strings.ToLower(name), true)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("Community not found")
		}
		m, err := tx.FindMembership(ctx, c.ID, userID)
		if err != nil {
			return err
		}

		switch {
		case action == ActionJoin && m != nil:
			return apperr.Conflict("Already a member")
		case action == ActionLeave && m == nil:
			return apperr.Conflict("Not a member")
		case action == ActionJoin:
			err = tx.InsertMembership(ctx, &models.CommunityMembership{
				ID:          s.newID(),
				CommunityID: c.ID,
				UserID:      userID,
				JoinedAt:    s.now(),
				Role:        models.RoleMember,
			})
		default:
			err = tx.DeleteMembership(ctx, c.ID, userID)
		}
		if err != nil {
			return err
		}
		return tx.RecountMembers(ctx, c.ID)
	})
	if err != nil {
		return false, apperr.Wrap("Failed to update membership", err)
	}
	return action == ActionJoin, nil
}

// Update edits a community's presentation. Only admins may do so.
func (s *Service) Update(ctx context.Context, name, userID string, req models.UpdateCommunityRequest) (*models.Community, error) {
	var out *models.Community
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		c, err := tx.FindByName(ctx, strings.ToLower(name), true)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("Community not found")
		}
		m, err := tx.FindMembership(ctx, c.ID, userID)
		if err != nil {
			return err
		}
		if m == nil || m.Role != models.RoleAdmin {
			return apperr.Forbidden("No permission to edit this community")
		}

		fields := map[string]interface{}{}
		if req.DisplayName != nil {
			dn := strings.TrimSpace(*req.DisplayName)
			if dn == "" {
				return apperr.InvalidArgument("Display name cannot be empty")
			}
			fields["display_name"] = dn
			c.DisplayName = dn
		}
		if req.Description != nil {
			fields["description"] = *req.Description
			c.Description = req.Description
		}
		if req.IsPrivate != nil {
			fields["is_private"] = *req.IsPrivate
			c.IsPrivate = *req.IsPrivate
		}
		if len(fields) > 0 {
			if err := tx.Update(ctx, c.ID, fields); err != nil {
				return err
			}
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("Failed to update community", err)
	}
	return out, nil
}
