package middleware

import (
	"net/http"

	"llm_gateway/internal/logging"
	"llm_gateway/internal/model"
	"llm_gateway/internal/service"
	"llm_gateway/internal/session"

	"github.com/gin-gonic/gin"
)

const AccountKey = "authAccount"

// SessionMiddleware attaches the request's session to the context
func SessionMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.Load(c)
		c.Next()
	}
}

// IdentityMiddleware resolves the session's phone to an account once per
// request. A phone whose account no longer exists leaves the request
// unauthenticated.
func IdentityMiddleware(sessions *session.Manager, auth service.AuthService, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone, ok := sessions.Identity(c)
		if !ok {
			c.Next()
			return
		}

		account, err := auth.Resolve(c.Request.Context(), phone)
		if err != nil {
			log.Error(c.Request.Context(), "failed to resolve session identity", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}
		if account != nil {
			c.Set(AccountKey, account)
		}
		c.Next()
	}
}

// CurrentAccount returns the account resolved by IdentityMiddleware
func CurrentAccount(c *gin.Context) (*model.Account, bool) {
	v, exists := c.Get(AccountKey)
	if !exists {
		return nil, false
	}
	account, ok := v.(*model.Account)
	return account, ok && account != nil
}
