package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"llm_gateway/internal/logging"
	"llm_gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "llmgw.session"

// Options configure the session cookie.
type Options struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Session is the per-request view of a session. It is only persisted by
// Manager.Save.
type Session struct {
	id         string
	phone      string
	expiresAt  time.Time
	persisted  bool
	previousID string
	destroyed  bool
}

// Phone returns the bound phone, empty for anonymous sessions.
func (s *Session) Phone() string { return s.phone }

// ExpiresAt is zero until the session has been saved or loaded.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// Manager resolves sessions from requests and persists them in a Store.
type Manager struct {
	store  Store
	tokens *utils.JWTUtil
	opts   Options
	log    logging.Logger
	now    func() time.Time
}

func NewManager(store Store, tokens *utils.JWTUtil, opts Options, log logging.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "llmgw.sid"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	return &Manager{
		store:  store,
		tokens: tokens,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

// Load resolves the session carried by the request cookie and attaches it
// to c. A missing, tampered, unknown or expired cookie yields an anonymous
// session; only store failures are logged.
func (m *Manager) Load(c *gin.Context) *Session {
	s := &Session{}
	defer c.Set(contextKey, s)

	raw, err := c.Cookie(m.opts.CookieName)
	if err != nil || raw == "" {
		return s
	}
	claims, err := m.tokens.ValidateToken(raw)
	if err != nil {
		m.log.Debug(c.Request.Context(), "ignoring invalid session cookie", "error", err)
		return s
	}
	rec, err := m.store.Get(c.Request.Context(), claims.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.Warn(c.Request.Context(), "session lookup failed", "error", err)
		}
		return s
	}

	s.id = rec.ID
	s.phone = rec.Phone
	s.expiresAt = rec.ExpiresAt
	s.persisted = true
	return s
}

// From returns the session attached to c, loading it if needed.
func (m *Manager) From(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return m.Load(c)
}

// Identity returns the phone bound to the request's session.
func (m *Manager) Identity(c *gin.Context) (string, bool) {
	phone := m.From(c).phone
	return phone, phone != ""
}

// Authenticate binds phone to the request's session under a fresh id.
// Nothing is persisted until Save.
func (m *Manager) Authenticate(c *gin.Context, phone string) {
	s := m.From(c)
	if s.persisted {
		s.previousID = s.id
	}
	s.id = uuid.NewString()
	s.phone = phone
	s.persisted = false
	s.destroyed = false
}

// Save persists the session and writes the cookie. It must complete before
// a response that depends on the login is sent. Anonymous and destroyed
// sessions are not stored.
func (m *Manager) Save(c *gin.Context) error {
	s := m.From(c)
	if s.destroyed || s.phone == "" {
		return nil
	}
	ctx := c.Request.Context()

	expiresAt := m.now().Add(m.opts.MaxAge)
	if err := m.store.Save(ctx, Record{ID: s.id, Phone: s.phone, ExpiresAt: expiresAt}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	token, err := m.tokens.GenerateToken(s.id, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}

	if s.previousID != "" {
		if err := m.store.Delete(ctx, s.previousID); err != nil {
			m.log.Warn(ctx, "failed to delete rotated session", "error", err)
		}
		s.previousID = ""
	}

	s.expiresAt = expiresAt
	s.persisted = true
	m.setCookie(c, token, expiresAt)
	return nil
}

// Destroy invalidates the session and expires the cookie. The cookie is
// cleared even when the store delete fails.
func (m *Manager) Destroy(c *gin.Context) error {
	s := m.From(c)
	ctx := c.Request.Context()

	var errs []error
	for _, id := range []string{s.id, s.previousID} {
		if id == "" {
			continue
		}
		if err := m.store.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	*s = Session{destroyed: true}
	m.clearCookie(c)
	return errors.Join(errs...)
}

// Prune deletes expired records from the store.
func (m *Manager) Prune(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// RunPruner calls Prune every interval until ctx is done.
func (m *Manager) RunPruner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Prune(ctx)
			if err != nil {
				m.log.Warn(ctx, "session prune failed", "error", err)
				continue
			}
			if n > 0 {
				m.log.Debug(ctx, "pruned expired sessions", "count", n)
			}
		}
	}
}

func (m *Manager) setCookie(c *gin.Context, value string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
