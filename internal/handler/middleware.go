package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"grailify/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"
	sessionIDKey = "session_id"
)

// APIKeyAuth rejects requests whose X-API-Key header does not match key.
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-API-Key header"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}

// Session resolves the caller's session id from the X-Session-ID header or
// the session cookie, minting a new one when neither holds a valid id. The
// id is echoed back in both places.
func (h *Handler) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(session.HeaderName))
		if !session.ValidID(id) {
			id, _ = c.Cookie(session.CookieName)
		}
		if !session.ValidID(id) {
			id = session.NewID()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(session.CookieName, id, int(h.sessionTTL.Seconds()), "/", "", h.secureCookies, true)
		c.Header(session.HeaderName, id)
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
