package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/communities"
	"github.com/emilythestrangee/forum/backend/internal/middleware"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

type CommunityHandler struct {
	communities CommunityService
}

func NewCommunityHandler(cs CommunityService) *CommunityHandler {
	return &CommunityHandler{communities: cs}
}

func (h *CommunityHandler) ListCommunities(c *gin.Context) {
	list, err := h.communities.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetCommunity works for anonymous callers; is_member is only true for an
// authenticated member.
func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	d, err := h.communities.Details(c.Request.Context(), c.Param("name"), middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *CommunityHandler) MyCommunities(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.communities.Mine(c.Request.Context(), userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if list == nil {
		list = []communities.Membership{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommunityHandler) CheckName(c *gin.Context) {
	ok, err := h.communities.NameAvailable(c.Request.Context(), c.Query("community-name"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isValid": ok})
}

func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Name and display name are required"))
		return
	}

	community, err := h.communities.Create(c.Request.Context(), userID, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, community)
}

// UpdateCommunity lets an admin change display name, description and privacy.
func (h *CommunityHandler) UpdateCommunity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Invalid request body"))
		return
	}

	name := c.Param("name")
	community, err := h.communities.Update(c.Request.Context(), name, userID, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Community '%s' updated successfully.", community.Name),
		"data":    community,
	})
}

func (h *CommunityHandler) Membership(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.InvalidArgument("Invalid action"))
		return
	}

	isMember, err := h.communities.SetMembership(c.Request.Context(), c.Param("name"), userID, req.Action)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	msg := "Left successfully"
	if isMember {
		msg = "Joined successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "is_member": isMember})
}
