package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuthJSON rejects unauthenticated requests with 401
func RequireAuthJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentAccount(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAuthRedirect sends unauthenticated requests to loginPath
func RequireAuthRedirect(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentAccount(c); !ok {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
