// Package middleware holds the gin middleware shared by all routes.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/apperr"
	"github.com/emilythestrangee/forum/backend/internal/auth"
	"github.com/emilythestrangee/forum/backend/internal/logger"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("Missing or invalid authorization header"))
			return
		}

		identity, err := v.Verify(token)
		if err != nil {
			logger.WarnWithContext(c.Request.Context(), "auth: %v", err)
			apperr.Respond(c, apperr.Unauthorized("Authentication failed"))
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a valid token
// is present and otherwise lets the request through anonymously.
func OptionalAuthMiddleware(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err == nil {
			if identity, err := v.Verify(token); err == nil {
				setIdentity(c, identity)
			}
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, identity auth.Identity) {
	c.Set(UserIDKey, identity.ID)
	c.Set(UserEmailKey, identity.Email)
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
