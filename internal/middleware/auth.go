package middleware

import (
	"net/http"
	"strings"

	"cardioalert/internal/models"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// AuthMiddleware validates JWT access token from Authorization header
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(token)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth injects claims when a valid token is present and lets anonymous requests through
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := utils.ValidateAccessToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAdmin checks if the authenticated user has admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		if role != models.RoleAdmin {
			utils.ErrorResponse(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// CurrentRole returns the authenticated user's role, or "" for anonymous requests
func CurrentRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, claims.Role)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
