package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/apperrors"
	"civictrack-be/controllers"
	"civictrack-be/metrics"
	"civictrack-be/models"
)

type tokenAuth map[string]*models.User

func (a tokenAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := a[token]; ok {
		return u, nil
	}
	return nil, apperrors.Unauthenticated("Invalid authorization token")
}

func newRouter(health func(context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(Options{
		Metrics: metrics.New(),
		Authenticator: tokenAuth{
			"user": {ID: primitive.NewObjectID(), Role: models.RoleUser},
		},
		Health: health,
		Auth:   controllers.NewAuthController(nil),
		Issues: controllers.NewIssueController(nil, nil),
		Admin:  controllers.NewAdminController(nil, nil, nil),
		Users:  controllers.NewUserController(nil),
	})
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesAreRegistered(t *testing.T) {
	r := newRouter(nil)

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"GET /api/auth/me",
		"GET /api/issues",
		"POST /api/issues",
		"GET /api/issues/user",
		"POST /api/issues/photos",
		"GET /api/issues/:id",
		"DELETE /api/issues/:id",
		"PATCH /api/issues/:id/status",
		"POST /api/issues/:id/flag",
		"GET /api/admin/dashboard",
		"GET /api/admin/analytics",
		"GET /api/admin/issues",
		"PATCH /api/admin/issues/:id/status",
		"DELETE /api/admin/issues/:id",
		"GET /api/admin/flags",
		"PATCH /api/admin/flags/:id/review",
		"DELETE /api/admin/flags/:id",
		"GET /api/admin/users",
		"PATCH /api/admin/users/:id/ban",
		"PATCH /api/admin/users/:id/unban",
		"GET /ping",
		"GET /health",
		"GET /metrics",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestHealth(t *testing.T) {
	w := get(newRouter(func(context.Context) error { return nil }), "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(newRouter(func(context.Context) error { return errors.New("no primary") }), "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	r := newRouter(nil)

	w := get(r, "/api/admin/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/api/admin/dashboard", "user")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestIDAndMetrics(t *testing.T) {
	r := newRouter(nil)

	w := get(r, "/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `civictrack_http_request_duration_seconds_count{method="GET",route="/ping",status="200"} 1`)
}
