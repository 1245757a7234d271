package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"llm_gateway/internal/logging"
	"llm_gateway/internal/middleware"
	"llm_gateway/internal/model"
	"llm_gateway/internal/observability"
	"llm_gateway/internal/repository"
	"llm_gateway/internal/service"
	"llm_gateway/internal/session"

	"github.com/gin-gonic/gin"
)

const msgSessionNotSaved = "Could not save your session. Please try again."

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	service       service.AuthService
	sessions      *session.Manager
	metrics       *observability.Metrics
	log           logging.Logger
	exposeDetails bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, sessions *session.Manager, metrics *observability.Metrics, log logging.Logger, exposeDetails bool) *AuthHandler {
	return &AuthHandler{service: s, sessions: sessions, metrics: metrics, log: log, exposeDetails: exposeDetails}
}

func (h *AuthHandler) record(event, outcome string) {
	if h.metrics != nil {
		h.metrics.Auth(event, outcome)
	}
}

// LoginPage describes the login form, or sends authenticated users home
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.CurrentAccount(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": "Log In"})
}

// RegisterPage describes the registration form with an optional prefilled phone
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if _, ok := middleware.CurrentAccount(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": "Register", "prefill_phone": c.Query("phone")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.PhoneRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	account, err := h.service.Login(c.Request.Context(), req.Phone)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.record("login", "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "phone": req.Phone})
		case errors.Is(err, service.ErrAccountNotFound):
			h.record("login", "unknown_phone")
			c.Redirect(http.StatusSeeOther, "/register?phone="+url.QueryEscape(strings.TrimSpace(req.Phone)))
		default:
			h.record("login", "error")
			writeError(c, err, h.exposeDetails)
		}
		return
	}

	if !h.startSession(c, account.Phone, "login") {
		return
	}
	h.record("login", "success")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.PhoneRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	account, err := h.service.Register(c.Request.Context(), req.Phone)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.record("register", "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "phone": req.Phone})
		case errors.Is(err, repository.ErrAccountExists):
			h.record("register", "conflict")
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists. Please log in.", "phone": req.Phone})
		default:
			h.record("register", "error")
			writeError(c, err, h.exposeDetails)
		}
		return
	}

	h.log.Info(c.Request.Context(), "account registered", "phone", account.Phone)
	if !h.startSession(c, account.Phone, "register") {
		return
	}
	h.record("register", "success")
	c.Redirect(http.StatusSeeOther, "/")
}

// startSession binds phone to the session and persists it. The caller may
// only redirect when it returns true.
func (h *AuthHandler) startSession(c *gin.Context, phone, event string) bool {
	h.sessions.Authenticate(c, phone)
	if err := h.sessions.Save(c); err != nil {
		h.log.Error(c.Request.Context(), "failed to save session", "event", event, "error", err)
		h.record(event, "session_error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSessionNotSaved})
		return false
	}
	return true
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		h.log.Warn(c.Request.Context(), "failed to destroy session", "error", err)
	}
	h.record("logout", "success")
	c.Redirect(http.StatusSeeOther, "/login")
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.GET("/login", h.LoginPage)
	rg.POST("/login", h.Login)
	rg.GET("/register", h.RegisterPage)
	rg.POST("/register", h.Register)
	rg.GET("/logout", h.Logout)
}
