package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/api/handler"
	"omninet-lottery/backend/internal/health"
	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/service"
	"omninet-lottery/backend/pkg/jwt"
)

type fixedResolver struct{ id *identity.Identity }

func (r fixedResolver) Resolve(_ context.Context, _ *http.Request) (*identity.Identity, error) {
	return r.id, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{JWTSecret: "router-test-secret-0123456789", SessionTTL: time.Hour}
	cfg.RateLimit = config.RateLimitConfig{AuthLimit: 10, AuthWindow: time.Minute}
	cfg.Metrics.Enabled = true
	return cfg
}

// newTestEngine 服务层为空实现：仅覆盖在访问数据前即被拒绝的路径
func newTestEngine(t *testing.T, cfg *config.Config, session *identity.Identity) (http.Handler, *jwt.Manager) {
	t.Helper()
	logger := zap.NewNop()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	healthSvc := health.NewService(time.Minute, logger)

	h := handler.NewHandler(cfg, &service.Service{}, healthSvc, nil, logger)
	engine := Setup(cfg, h, Deps{
		Sessions:  fixedResolver{session},
		Snapshots: identity.NewTokenResolver(jwtMgr),
		Health:    healthSvc,
	}, logger)
	return engine, jwtMgr
}

func get(h http.Handler, path string, mod func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if mod != nil {
		mod(req)
	}
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig(), nil)

	w := get(engine, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"OK"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(engine, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestProtectedRoutesRejectBeforeDataAccess(t *testing.T) {
	user := &identity.Identity{ID: "u-1", Role: model.RoleUser}

	cases := []struct {
		path    string
		session *identity.Identity
		status  int
	}{
		{"/api/auth/me", nil, http.StatusUnauthorized},
		{"/api/user/tickets", nil, http.StatusUnauthorized},
		{"/api/referrals/code", nil, http.StatusUnauthorized},
		{"/api/admin/counts", nil, http.StatusUnauthorized},
		{"/api/admin/counts", user, http.StatusForbidden},
		{"/api/admin/users", user, http.StatusForbidden},
		{"/api/admin/users/export", user, http.StatusForbidden},
		{"/api/admin/notifications", user, http.StatusForbidden},
	}
	for _, tc := range cases {
		engine, _ := newTestEngine(t, testConfig(), tc.session)
		w := get(engine, tc.path, nil)
		assert.Equal(t, tc.status, w.Code, tc.path)
		assert.Contains(t, w.Body.String(), `"success":false`, tc.path)
	}
}

func TestAuthMeUsesSessionIdentity(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig(), &identity.Identity{ID: "u-1", Name: "Alice", Role: model.RoleUser})

	w := get(engine, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u-1"`)
}

func TestEdgeUsesTokenSnapshot(t *testing.T) {
	engine, jwtMgr := newTestEngine(t, testConfig(), nil)

	token, _, err := jwtMgr.Generate(jwt.Subject{UserID: "a-1", Name: "Root", Email: "root@example.com", Role: string(model.RoleAdmin)})
	require.NoError(t, err)
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
	cookie := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: identity.CookieName, Value: token}) }

	assert.Equal(t, http.StatusUnauthorized, get(engine, "/edge/session", nil).Code)

	w := get(engine, "/edge/session", bearer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"ADMIN"`)

	assert.Equal(t, http.StatusOK, get(engine, "/edge/admin-gate", cookie).Code)
}

func TestDebugRouteFlagGated(t *testing.T) {
	admin := &identity.Identity{ID: "a-1", Role: model.RoleAdmin}

	engine, _ := newTestEngine(t, testConfig(), admin)
	assert.Equal(t, http.StatusNotFound, get(engine, "/api/debug/store", nil).Code)

	cfg := testConfig()
	cfg.Feature.DebugEndpoints = true
	engine, _ = newTestEngine(t, cfg, &identity.Identity{ID: "u-1", Role: model.RoleUser})
	assert.Equal(t, http.StatusForbidden, get(engine, "/api/debug/store", nil).Code)
}
