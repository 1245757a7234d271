package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// DevSessionSecret is used outside production when SESSION_SECRET is unset.
	DevSessionSecret = "llm-site-secret"
)

// Config holds all runtime settings of the gateway
type Config struct {
	Env        string
	ServerPort string
	LogLevel   string

	SessionSecret        string
	SessionMaxAge        time.Duration
	SessionCookieName    string
	SessionCookieSecure  bool
	SessionDatabaseURL   string
	SessionPruneInterval time.Duration

	TrustProxy     bool
	TrustedProxies []string

	DataDir string

	LLMAPIURL  string
	LLMTimeout time.Duration
}

// Production reports whether the gateway runs with production settings.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// UsersFile is the location of the account collection.
func (c Config) UsersFile() string {
	return filepath.Join(c.DataDir, "users.json")
}

// UsingDevSecret reports whether the insecure fallback secret is in use.
func (c Config) UsingDevSecret() bool {
	return c.SessionSecret == DevSessionSecret
}

// Load reads configuration from environment variables and applies defaults
func Load() (*Config, error) {
	env := strings.ToLower(envOrDefault("APP_ENV", EnvDevelopment))
	if env != EnvProduction && env != EnvDevelopment {
		return nil, fmt.Errorf("invalid APP_ENV %q: want %q or %q", env, EnvDevelopment, EnvProduction)
	}
	production := env == EnvProduction

	cfg := &Config{
		Env:                env,
		ServerPort:         envOrDefault("SERVER_PORT", "8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		SessionSecret:      strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionCookieName:  envOrDefault("SESSION_COOKIE_NAME", "llmgw.sid"),
		SessionDatabaseURL: strings.TrimSpace(os.Getenv("SESSION_DATABASE_URL")),
		TrustedProxies:     splitList(envOrDefault("TRUSTED_PROXIES", "127.0.0.1,::1")),
		DataDir:            envOrDefault("DATA_DIR", "data"),
		LLMAPIURL:          envOrDefault("LLM_API_URL", "https://mlvoca.com/api/generate"),
	}

	if cfg.SessionSecret == "" {
		if production {
			return nil, errors.New("SESSION_SECRET must be set in production")
		}
		cfg.SessionSecret = DevSessionSecret
	}

	var err error
	if cfg.SessionMaxAge, err = durationFromEnv("SESSION_MAX_AGE", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionPruneInterval, err = durationFromEnv("SESSION_PRUNE_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = durationFromEnv("LLM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionCookieSecure, err = boolFromEnv("SESSION_COOKIE_SECURE", production); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = boolFromEnv("TRUST_PROXY", production); err != nil {
		return nil, err
	}

	if cfg.SessionMaxAge <= 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", cfg.SessionMaxAge)
	}
	if cfg.LLMTimeout <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", cfg.LLMTimeout)
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT %q: %w", cfg.ServerPort, err)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
