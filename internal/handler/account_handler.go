package handler

import (
	"errors"
	"net/http"

	"llm_gateway/internal/middleware"
	"llm_gateway/internal/model"
	"llm_gateway/internal/observability"
	"llm_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves the home view model, the model catalog and the
// subscription toggle
type AccountHandler struct {
	service       service.AuthService
	catalog       *model.Catalog
	metrics       *observability.Metrics
	exposeDetails bool
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(s service.AuthService, catalog *model.Catalog, metrics *observability.Metrics, exposeDetails bool) *AccountHandler {
	return &AccountHandler{service: s, catalog: catalog, metrics: metrics, exposeDetails: exposeDetails}
}

// Home always answers 200 so platform health checks on / never see a redirect.
func (h *AccountHandler) Home(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	body := gin.H{
		"authenticated": ok,
		"models":        h.catalog.List(),
	}
	if ok {
		body["account"] = account
	}
	c.JSON(http.StatusOK, body)
}

func (h *AccountHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.catalog.List()})
}

func (h *AccountHandler) Subscription(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)
	c.JSON(http.StatusOK, gin.H{
		"phone":      account.Phone,
		"subscribed": account.Subscribed,
	})
}

func (h *AccountHandler) ToggleSubscription(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	updated, err := h.service.ToggleSubscription(c.Request.Context(), account.Phone)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		if h.metrics != nil {
			h.metrics.Auth("subscribe", "error")
		}
		writeError(c, err, h.exposeDetails)
		return
	}

	message := "Subscription cancelled."
	outcome := "cancelled"
	if updated.Subscribed {
		message = "Subscription activated."
		outcome = "activated"
	}
	if h.metrics != nil {
		h.metrics.Auth("subscribe", outcome)
	}
	c.JSON(http.StatusOK, gin.H{
		"phone":      updated.Phone,
		"subscribed": updated.Subscribed,
		"message":    message,
	})
}

// RegisterAccountRoutes registers account routes. requireAuth guards the
// subscription endpoints.
func (h *AccountHandler) RegisterAccountRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/", h.Home)
	rg.GET("/api/models", h.Models)

	subscribeGroup := rg.Group("/subscribe", requireAuth)
	{
		subscribeGroup.GET("", h.Subscription)
		subscribeGroup.POST("", h.ToggleSubscription)
	}
}
