package handler

import (
	"net/http"

	"signal-desk/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// LoadSession resolves the :id path parameter to a live session and aborts with 404 when
// the session is unknown or has been swept.
func (h *Handler) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.sessions.Get(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
