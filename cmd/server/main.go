package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"llm_gateway/internal/config"
	"llm_gateway/internal/handler"
	"llm_gateway/internal/llm"
	"llm_gateway/internal/logging"
	"llm_gateway/internal/model"
	"llm_gateway/internal/observability"
	"llm_gateway/internal/policy"
	"llm_gateway/internal/repository"
	"llm_gateway/internal/service"
	"llm_gateway/internal/session"
	"llm_gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "info", false).Error(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Production())
	if envErr != nil {
		log.Debug(ctx, "no .env file loaded, relying on environment variables")
	}
	if cfg.UsingDevSecret() {
		log.Warn(ctx, "SESSION_SECRET not set, using the development secret")
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Account store ---
	accountRepo, err := repository.NewFileAccountRepository(cfg.UsersFile())
	if err != nil {
		log.Error(ctx, "failed to open account store", "path", cfg.UsersFile(), "error", err)
		os.Exit(1)
	}

	// --- Session store ---
	var store session.Store = session.NewMemoryStore()
	if dbCfg := cfg.SessionDBConfig(); dbCfg != nil {
		dbPool, err := config.ConnectDB(ctx, dbCfg, log)
		if err != nil {
			log.Error(ctx, "failed to connect to session database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := config.AutoMigrate(ctx, dbPool); err != nil {
			log.Error(ctx, "failed to auto-migrate session database", "error", err)
			os.Exit(1)
		}
		store = session.NewPostgresStore(dbPool)
		log.Info(ctx, "using postgres session store")
	} else {
		log.Info(ctx, "using in-memory session store")
	}

	sessions := session.NewManager(store, utils.NewJWTUtil(cfg.SessionSecret), session.Options{
		CookieName: cfg.SessionCookieName,
		MaxAge:     cfg.SessionMaxAge,
		Secure:     cfg.SessionCookieSecure,
	}, log)

	pruneCtx, stopPruner := context.WithCancel(ctx)
	defer stopPruner()
	go sessions.RunPruner(pruneCtx, cfg.SessionPruneInterval)

	// --- Services ---
	catalog := model.DefaultCatalog()
	metrics := observability.NewMetrics("llmgw")
	llmClient := llm.NewClient(cfg.LLMAPIURL, cfg.LLMTimeout)

	authService := service.NewAuthService(accountRepo)
	generateService := service.NewGenerateService(policy.New(catalog), llmClient, metrics, log)

	// --- Router ---
	router, err := handler.NewRouter(handler.RouterConfig{
		Auth:           authService,
		Generate:       generateService,
		Sessions:       sessions,
		Catalog:        catalog,
		Metrics:        metrics,
		Logger:         log,
		Production:     cfg.Production(),
		TrustProxy:     cfg.TrustProxy,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		log.Error(ctx, "failed to build router", "error", err)
		os.Exit(1)
	}

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(ctx, "server starting", "port", cfg.ServerPort, "env", cfg.Env, "llm_url", cfg.LLMAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info(ctx, "shutting down server")
	stopPruner()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server forced to shutdown", "error", err)
	}

	log.Info(ctx, "server exiting")
}
