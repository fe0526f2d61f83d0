package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/comments"
	"github.com/emilythestrangee/forum/backend/internal/feed"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/votes"
)

type PostHandler struct {
	posts    PostService
	feed     FeedService
	comments CommentService
	voter    *voteHandler
}

func NewPostHandler(p PostService, f FeedService, cs CommentService, voter *voteHandler) *PostHandler {
	return &PostHandler{posts: p, feed: f, comments: cs, voter: voter}
}

// GetPosts returns a ranked page of posts.
func (h *PostHandler) GetPosts(c *gin.Context) {
	page, err := h.feed.Feed(c.Request.Context(), feed.RawParams{
		Strategy:  c.Query("sort"),
		TimeFrame: c.Query("timeFrame"),
		Community: c.Query("community"),
		Limit:     c.Query("limit"),
		Offset:    c.Query("offset"),
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Title and type are required"))
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Invalid request body"))
		return
	}

	post, err := h.posts.Edit(c.Request.Context(), id, userID, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id, userID); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// VotePost sets, changes or retracts the caller's vote on a post.
func (h *PostHandler) VotePost(c *gin.Context) {
	h.voter.cast(c, votes.KindPost)
}

// GetComments returns the post's comment forest, pruned to maxDepth.
func (h *PostHandler) GetComments(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}

	forest, err := h.comments.List(c.Request.Context(), id, comments.ParseMaxDepth(c.Query("maxDepth")))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, forest)
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Post not found")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Comment body is required"))
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), id, userID, req.Body, req.ParentID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
