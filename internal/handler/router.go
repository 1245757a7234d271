package handler

import (
	"fmt"
	"net/http"

	"llm_gateway/internal/logging"
	"llm_gateway/internal/middleware"
	"llm_gateway/internal/model"
	"llm_gateway/internal/observability"
	"llm_gateway/internal/service"
	"llm_gateway/internal/session"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything NewRouter wires together. Metrics may be nil.
type RouterConfig struct {
	Auth           service.AuthService
	Generate       service.GenerateService
	Sessions       *session.Manager
	Catalog        *model.Catalog
	Metrics        *observability.Metrics
	Logger         logging.Logger
	Production     bool
	TrustProxy     bool
	TrustedProxies []string
}

// NewRouter builds the gin engine with every route of the gateway
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))

	var proxies []string
	if cfg.TrustProxy {
		proxies = cfg.TrustedProxies
	}
	if err := router.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	exposeDetails := !cfg.Production
	authHandler := NewAuthHandler(cfg.Auth, cfg.Sessions, cfg.Metrics, cfg.Logger, exposeDetails)
	accountHandler := NewAccountHandler(cfg.Auth, cfg.Catalog, cfg.Metrics, exposeDetails)
	generateHandler := NewGenerateHandler(cfg.Generate, exposeDetails)

	app := router.Group("/",
		middleware.SessionMiddleware(cfg.Sessions),
		middleware.IdentityMiddleware(cfg.Sessions, cfg.Auth, cfg.Logger),
	)
	authHandler.RegisterAuthRoutes(app)
	accountHandler.RegisterAccountRoutes(app, middleware.RequireAuthRedirect("/login"))
	generateHandler.RegisterGenerateRoutes(app, middleware.RequireAuthJSON())

	return router, nil
}
