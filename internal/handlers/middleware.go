package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rahul3988/updnefol-backend/internal/auth"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// userIDKey is the gin context key holding the authenticated user's id.
const userIDKey = "user_id"

// RequireAuth validates the Authorization bearer token and stores the user id
// on the context for downstream handlers.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			respondError(c, http.StatusUnauthorized, models.ErrCodeAuth, "missing bearer token")
			c.Abort()
			return
		}

		userID, err := auth.ValidateJWT(strings.TrimSpace(raw[len("bearer "):]), jwtSecret)
		if err != nil {
			respondError(c, http.StatusUnauthorized, models.ErrCodeAuth, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUserID reads the id stored by RequireAuth.
func currentUserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := v.(int)
	return userID, ok
}
