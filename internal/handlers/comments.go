package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/votes"
)

type CommentHandler struct {
	comments CommentService
	voter    *voteHandler
}

func NewCommentHandler(cs CommentService, voter *voteHandler) *CommentHandler {
	return &CommentHandler{comments: cs, voter: voter}
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment not found")
	if !ok {
		return
	}
	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// UpdateComment edits the body within the edit window.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment not found")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Comment body is required"))
		return
	}

	comment, err := h.comments.Edit(c.Request.Context(), id, userID, req.Body)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Comment updated successfully",
		"body":       comment.Body,
		"updated_at": comment.UpdatedAt,
	})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id", "Comment not found")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), id, userID); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *CommentHandler) VoteComment(c *gin.Context) {
	h.voter.cast(c, votes.KindComment)
}
