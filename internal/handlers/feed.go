package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
)

type FeedHandler struct {
	feed FeedService
}

func NewFeedHandler(f FeedService) *FeedHandler {
	return &FeedHandler{feed: f}
}

// Stats summarises post activity, optionally scoped to one community.
func (h *FeedHandler) Stats(c *gin.Context) {
	report, err := h.feed.Stats(c.Request.Context(), c.Query("community"), c.Query("timeFrame"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *FeedHandler) Trending(c *gin.Context) {
	report, err := h.feed.Trending(c.Request.Context(), c.Query("timeFrame"), c.Query("limit"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
