package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"llm_gateway/internal/logging"
	"llm_gateway/internal/model"
	"llm_gateway/internal/observability"
	"llm_gateway/internal/session"
	"llm_gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, phone string) (*model.Account, error) {
	args := m.Called(ctx, phone)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *mockAuthService) Register(ctx context.Context, phone string) (*model.Account, error) {
	args := m.Called(ctx, phone)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *mockAuthService) Resolve(ctx context.Context, phone string) (*model.Account, error) {
	args := m.Called(ctx, phone)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *mockAuthService) ToggleSubscription(ctx context.Context, phone string) (*model.Account, error) {
	args := m.Called(ctx, phone)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

const testPhone = "+15551234567"

// newSessionCookie stores a session for phone and returns its signed cookie.
func newSessionCookie(t *testing.T, store session.Store, phone string) *http.Cookie {
	t.Helper()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, store.Save(context.Background(), session.Record{ID: "sess-1", Phone: phone, ExpiresAt: expires}))
	token, err := utils.NewJWTUtil("secret").GenerateToken("sess-1", expires)
	require.NoError(t, err)
	return &http.Cookie{Name: "sid", Value: token}
}

func newIdentityRouter(auth *mockAuthService, store session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessions := session.NewManager(store, utils.NewJWTUtil("secret"), session.Options{CookieName: "sid", MaxAge: time.Hour}, logging.Discard())

	r := gin.New()
	r.Use(SessionMiddleware(sessions), IdentityMiddleware(sessions, auth, logging.Discard()))
	r.GET("/me", func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"phone": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"phone": account.Phone})
	})
	r.GET("/private", RequireAuthJSON(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/page", RequireAuthRedirect("/login"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func serve(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityMiddleware_ResolvesAccount(t *testing.T) {
	store := session.NewMemoryStore()
	auth := new(mockAuthService)
	auth.On("Resolve", mock.Anything, testPhone).Return(&model.Account{Phone: testPhone}, nil).Once()
	r := newIdentityRouter(auth, store)

	w := serve(r, "/me", newSessionCookie(t, store, testPhone))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"phone":"+15551234567"}`, w.Body.String())
	auth.AssertExpectations(t)
}

func TestIdentityMiddleware_AnonymousSkipsLookup(t *testing.T) {
	auth := new(mockAuthService)
	r := newIdentityRouter(auth, session.NewMemoryStore())

	w := serve(r, "/me")
	assert.JSONEq(t, `{"phone":""}`, w.Body.String())
	auth.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestIdentityMiddleware_StalePhone(t *testing.T) {
	store := session.NewMemoryStore()
	auth := new(mockAuthService)
	auth.On("Resolve", mock.Anything, testPhone).Return(nil, nil)
	r := newIdentityRouter(auth, store)
	ck := newSessionCookie(t, store, testPhone)

	assert.JSONEq(t, `{"phone":""}`, serve(r, "/me", ck).Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/private", ck).Code)
}

func TestIdentityMiddleware_ResolveFailure(t *testing.T) {
	store := session.NewMemoryStore()
	auth := new(mockAuthService)
	auth.On("Resolve", mock.Anything, testPhone).Return(nil, errors.New("disk gone"))
	r := newIdentityRouter(auth, store)

	w := serve(r, "/me", newSessionCookie(t, store, testPhone))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Something went wrong. Please try again."}`, w.Body.String())
}

func TestRequireAuth(t *testing.T) {
	store := session.NewMemoryStore()
	auth := new(mockAuthService)
	auth.On("Resolve", mock.Anything, testPhone).Return(&model.Account{Phone: testPhone}, nil)
	r := newIdentityRouter(auth, store)

	w := serve(r, "/private")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = serve(r, "/page")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	ck := newSessionCookie(t, store, testPhone)
	assert.Equal(t, http.StatusNoContent, serve(r, "/private", ck).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/page", ck).Code)
}

func TestCurrentAccount_WrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(AccountKey, "not an account")

	_, ok := CurrentAccount(c)
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	metrics := observability.NewMetrics("mw")

	r := gin.New()
	r.Use(RequestLogger(logging.New(&buf, "debug", false), metrics))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, "/ok")
	serve(r, "/missing")

	assert.Contains(t, buf.String(), "route=/ok")
	assert.Contains(t, buf.String(), "route=unmatched")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/ok", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("unmatched", "404")))
}
