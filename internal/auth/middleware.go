package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextTokenKey = "github_token"

// RequireToken aborts with 401 unless the request carries a GitHub token in
// the access_token cookie or an Authorization: Bearer header.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing GitHub access token",
			})
			return
		}

		c.Set(contextTokenKey, token)
		c.Next()
	}
}

// TokenFromRequest reads the token, preferring the cookie
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}

// Token returns the token stored by RequireToken
func Token(c *gin.Context) string {
	return c.GetString(contextTokenKey)
}
