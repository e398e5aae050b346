package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptcare/backend/config"
	"aptcare/backend/pkg/jwt"
	applogger "aptcare/backend/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (b *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return b.revoked[jti], b.err
}

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-at-least-32-bytes-long!!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func authEngine(mgr *jwt.Manager, bl TokenBlacklist, roles ...string) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{JWTAuth(mgr, bl)}
	if len(roles) > 0 {
		chain = append(chain, RoleAuth(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID)+"|"+c.GetString(ContextRole))
	})
	r.GET("/p", chain...)
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newManager()
	access, err := mgr.GenerateAccessToken("u-1", "Manager")
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken("u-1", "Manager")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid", "Bearer " + access, http.StatusOK, "u-1|Manager"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
		{"refresh token rejected", "Bearer " + refresh, http.StatusUnauthorized, ""},
	}

	r := authEngine(mgr, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestJWTAuth_Blacklist(t *testing.T) {
	mgr := newManager()
	access, err := mgr.GenerateAccessToken("u-1", "Resident")
	require.NoError(t, err)
	claims, err := mgr.ParseToken(access)
	require.NoError(t, err)

	revoked := &stubBlacklist{revoked: map[string]bool{claims.ID: true}}
	assert.Equal(t, http.StatusUnauthorized, get(authEngine(mgr, revoked), "Bearer "+access).Code)

	// store failure fails open
	broken := &stubBlacklist{err: errors.New("redis down")}
	assert.Equal(t, http.StatusOK, get(authEngine(mgr, broken), "Bearer "+access).Code)
}

func TestRoleAuth(t *testing.T) {
	mgr := newManager()
	resident, _ := mgr.GenerateAccessToken("u-1", "Resident")
	manager, _ := mgr.GenerateAccessToken("u-2", "Manager")

	r := authEngine(mgr, nil, "Admin", "Manager")
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+resident).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+manager).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/p", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.aptcare.vn/"}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/p", nil)
	req.Header.Set("Origin", "https://app.aptcare.vn")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.aptcare.vn", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_ReachesServiceContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/p", func(c *gin.Context) { c.String(http.StatusOK, applogger.RequestID(c.Request.Context())) })

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "mobile-9f2c")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "mobile-9f2c", w.Body.String())
}

// countingLimiter allows the first max hits per key
type countingLimiter struct {
	max  int
	hits map[string]int
	err  error
}

func (l *countingLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.hits[key]++
	return l.hits[key] <= l.max, nil
}

func TestRateLimit_PerUserAfterAuth(t *testing.T) {
	mgr := newManager()
	lan, _ := mgr.GenerateAccessToken("u-lan", "Resident")
	hung, _ := mgr.GenerateAccessToken("u-hung", "Resident")

	lim := &countingLimiter{max: 2, hits: map[string]int{}}
	r := gin.New()
	r.GET("/p", JWTAuth(mgr, nil), RateLimit(lim, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	// same client ip for both residents
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+lan).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+lan).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "Bearer "+lan).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+hung).Code)

	assert.Equal(t, 3, lim.hits["rate_limit:user:u-lan:/p"])
	assert.Equal(t, 1, lim.hits["rate_limit:user:u-hung:/p"])
}

func TestRateLimit_PerIPBeforeAuth(t *testing.T) {
	lim := &countingLimiter{max: 1, hits: map[string]int{}}
	r := gin.New()
	r.POST("/login", RateLimit(lim, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	login := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, login("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.1"))
	assert.Equal(t, http.StatusOK, login("10.0.0.2"))
	assert.Contains(t, lim.hits, "rate_limit:ip:10.0.0.1:/login")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.GET("/p", RateLimit(&countingLimiter{err: errors.New("redis down")}, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusOK, get(r, "").Code)

	r = gin.New()
	r.GET("/p", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, get(r, "").Code)
}
