package handler

import (
	"net/http"

	"llm_gateway/internal/middleware"
	"llm_gateway/internal/model"
	"llm_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerateHandler proxies prompts to the upstream model
type GenerateHandler struct {
	service       service.GenerateService
	exposeDetails bool
}

// NewGenerateHandler creates a new GenerateHandler
func NewGenerateHandler(s service.GenerateService, exposeDetails bool) *GenerateHandler {
	return &GenerateHandler{service: s, exposeDetails: exposeDetails}
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	text, err := h.service.Generate(c.Request.Context(), account, req)
	if err != nil {
		writeError(c, err, h.exposeDetails)
		return
	}
	c.JSON(http.StatusOK, model.GenerateResponse{Response: text})
}

// RegisterGenerateRoutes registers the generation route behind requireAuth
func (h *GenerateHandler) RegisterGenerateRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/generate", requireAuth, h.Generate)
}
