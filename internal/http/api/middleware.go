package api

import (
	"net/http"

	"github.com/finbot-app/finbot/internal/auth"
	"github.com/gin-gonic/gin"
)

const contextUserIDKey = "finbot.userID"

// sessionMiddleware resolves the session cookie against the session
// store and attaches the owning user id to the request context. A
// missing or expired session simply leaves the request anonymous;
// requireSession decides whether that is fatal.
func sessionMiddleware(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, errCookie := c.Cookie(SessionCookie)
		if errCookie != nil || sessionID == "" {
			c.Next()
			return
		}
		session, errGet := sessions.Get(c.Request.Context(), sessionID)
		if errGet != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if session != nil {
			c.Set(contextUserIDKey, session.UserID)
		}
		c.Next()
	}
}

// requireSession aborts anonymous requests.
func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(contextUserIDKey); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		c.Next()
	}
}

// currentUserID returns the resolved user id for the request, or zero
// for anonymous callers.
func currentUserID(c *gin.Context) uint64 {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0
	}
	id, ok := value.(uint64)
	if !ok {
		return 0
	}
	return id
}
