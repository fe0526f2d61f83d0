package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/comments"
	"github.com/emilythestrangee/forum/backend/internal/communities"
	"github.com/emilythestrangee/forum/backend/internal/feed"
	"github.com/emilythestrangee/forum/backend/internal/middleware"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/posts"
	"github.com/emilythestrangee/forum/backend/internal/votes"
)

type PostService interface {
	Get(ctx context.Context, id string) (*posts.View, error)
	Create(ctx context.Context, authorID string, req models.CreatePostRequest) (*posts.View, error)
	Edit(ctx context.Context, id, authorID string, req models.UpdatePostRequest) (*posts.View, error)
	Delete(ctx context.Context, id, authorID string) error
}

type CommentService interface {
	List(ctx context.Context, postID string, maxDepth int) ([]*comments.Node, error)
	Get(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, postID, authorID, body string, parentID *string) (*models.Comment, error)
	Edit(ctx context.Context, id, authorID, body string) (*models.Comment, error)
	Delete(ctx context.Context, id, authorID string) error
}

type CommunityService interface {
	List(ctx context.Context) ([]models.Community, error)
	Details(ctx context.Context, name, userID string) (communities.Details, error)
	Mine(ctx context.Context, userID string) ([]communities.Membership, error)
	NameAvailable(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, userID string, req models.CreateCommunityRequest) (*models.Community, error)
	SetMembership(ctx context.Context, name, userID, action string) (bool, error)
	Update(ctx context.Context, name, userID string, req models.UpdateCommunityRequest) (*models.Community, error)
}

type FeedService interface {
	Feed(ctx context.Context, raw feed.RawParams) (feed.Page, error)
	Stats(ctx context.Context, community, timeFrame string) (feed.StatsReport, error)
	Trending(ctx context.Context, timeFrame, limit string) (feed.TrendingReport, error)
}

type VoteService interface {
	ApplyVote(ctx context.Context, kind votes.Kind, targetID, voterID string, voteType int) (votes.Tally, error)
}

type HealthChecker interface {
	Health() map[string]string
}

// Services are the dependencies of the HTTP layer.
type Services struct {
	Posts       PostService
	Comments    CommentService
	Communities CommunityService
	Feed        FeedService
	Votes       VoteService
	DB          HealthChecker
}

// Handler combines all handler types
type Handler struct {
	Post      *PostHandler
	Comment   *CommentHandler
	Community *CommunityHandler
	Feed      *FeedHandler
	db        HealthChecker
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(s Services) *Handler {
	voter := &voteHandler{votes: s.Votes}
	return &Handler{
		Post:      NewPostHandler(s.Posts, s.Feed, s.Comments, voter),
		Comment:   NewCommentHandler(s.Comments, voter),
		Community: NewCommunityHandler(s.Communities),
		Feed:      NewFeedHandler(s.Feed),
		db:        s.DB,
	}
}

// Health reports database health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.db.Health())
}

// pathID reads a uuid path parameter. Malformed ids cannot name a row, so
// they are reported as missing.
func pathID(c *gin.Context, param, notFound string) (string, bool) {
	id := c.Param(param)
	if _, err := uuid.Parse(id); err != nil {
		apperr.Respond(c, apperr.NotFound(notFound))
		return "", false
	}
	return id, true
}

// currentUser returns the authenticated caller. Routes behind AuthMiddleware
// always have one.
func currentUser(c *gin.Context) (string, bool) {
	id := middleware.UserID(c)
	if id == "" {
		apperr.Respond(c, apperr.Unauthorized("User not authenticated"))
		return "", false
	}
	return id, true
}

type voteHandler struct {
	votes VoteService
}

func (h *voteHandler) cast(c *gin.Context, kind votes.Kind) {
	id, ok := pathID(c, "id", kind.Label()+" not found")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Invalid vote type"))
		return
	}

	tally, err := h.votes.ApplyVote(c.Request.Context(), kind, id, userID, *req.VoteType)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}
