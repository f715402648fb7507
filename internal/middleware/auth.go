package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vivaha/backend/internal/auth"
	"github.com/vivaha/backend/internal/cache"
	"github.com/vivaha/backend/internal/models"
)

// SessionStore looks up the server-side session for a token. Logout clears
// the record, so a nil session for a valid JWT means the holder signed out.
type SessionStore interface {
	GetSession(token string) (*cache.Session, error)
}

// Context keys set by the auth middleware.
const (
	ContextUserID    = "user_id"
	ContextAccountID = "account_id"
	ContextRole      = "role"
	ContextToken     = "token"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// on the request context. With a session store attached, tokens whose
// session was cleared by logout are rejected even while the JWT is unexpired;
// a store lookup failure fails open on the JWT alone.
func AuthMiddleware(jwtService *auth.JWTService, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, models.Envelope{Success: false, Message: "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, models.Envelope{Success: false, Message: "Invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.Envelope{Success: false, Message: "Invalid token"})
			c.Abort()
			return
		}

		if sessions != nil {
			session, err := sessions.GetSession(parts[1])
			if err == nil && session == nil {
				c.JSON(http.StatusUnauthorized, models.Envelope{Success: false, Message: "Session expired"})
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextToken, parts[1])
		c.Next()
	}
}

// AdminMiddleware rejects callers without the admin role. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, models.Envelope{Success: false, Message: "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AccountID returns the authenticated caller's public account id.
func AccountID(c *gin.Context) string {
	id, _ := c.Get(ContextAccountID)
	accountID, _ := id.(string)
	return accountID
}
