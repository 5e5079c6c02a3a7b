package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxUsername      = "username"
	accessTokenQuery = "access_token"
)

func (h *Handler) userMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	token, ok := bearerToken(header)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	h.authorize(c, token)
}

// queryTokenMiddleware accepts the Authorization header or, failing that,
// the access_token query parameter.
func (h *Handler) queryTokenMiddleware(c *gin.Context) {
	if c.GetHeader("Authorization") != "" {
		h.userMiddleware(c)
		return
	}
	token := c.Query(accessTokenQuery)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing access token",
		})
		return
	}
	h.authorize(c, token)
}

func (h *Handler) authorize(c *gin.Context, token string) {
	username, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(ctxUsername, username)
	c.Next()
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
