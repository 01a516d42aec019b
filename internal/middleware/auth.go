package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scribesnap/internal/jwt"
)

const (
	ctxUserID      = "auth.userID"
	ctxTokenID     = "auth.tokenID"
	ctxTokenExpiry = "auth.tokenExpiry"
)

// TokenRevoker reports whether a signed-out token id is denylisted.
type TokenRevoker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Auth returns a Gin middleware that requires a valid bearer token and
// rejects tokens revoked by logout.
func Auth(jwtService *jwt.JWTService, revoker TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := jwtService.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check session"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session signed out"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxTokenID, claims.ID)
		c.Set(ctxTokenExpiry, claims.ExpiresAt.Time)
		c.Next()
	}
}

// UserID returns the authenticated user's id set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// TokenID returns the JTI of the current session token.
func TokenID(c *gin.Context) string {
	return c.GetString(ctxTokenID)
}

// TokenExpiry returns the expiry of the current session token.
func TokenExpiry(c *gin.Context) time.Time {
	expiry, _ := c.Get(ctxTokenExpiry)
	t, _ := expiry.(time.Time)
	return t
}
