package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/response"
)

// AuthHandler exposes the identity carried by the caller's token.
type AuthHandler struct{}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me godoc
// GET /api/v1/teacher/me, GET /api/v1/student/me
// Returns the token type, user id and permissions of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	permissions := claims.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":          claims.UserID,
			"token_type":  claims.TokenType,
			"permissions": permissions,
			"expires_at":  claims.ExpiresAt,
		},
	})
}
