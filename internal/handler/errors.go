package handler

import (
	"errors"
	"net/http"

	"llm_gateway/internal/llm"
	"llm_gateway/internal/repository"
	"llm_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

const msgTryAgain = "Something went wrong. Please try again."

// writeError maps service errors to status codes. Technical details of
// upstream failures are only included when exposeDetails is set.
func writeError(c *gin.Context, err error, exposeDetails bool) {
	var (
		validationErr    *service.ValidationError
		authorizationErr *service.AuthorizationError
		upstreamErr      *llm.Error
		persistenceErr   *service.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.As(err, &authorizationErr):
		c.JSON(http.StatusForbidden, gin.H{"error": "Model requires subscription"})
	case errors.Is(err, repository.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists. Please log in."})
	case errors.As(err, &upstreamErr):
		_ = c.Error(err)
		body := gin.H{"error": "Failed to generate response"}
		if exposeDetails {
			body["details"] = upstreamErr.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	case errors.As(err, &persistenceErr):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgTryAgain})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgTryAgain})
	}
}
