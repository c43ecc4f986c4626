package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/training-attendance-api/internal/handler"
	"github.com/noah-isme/training-attendance-api/internal/models"
	"github.com/noah-isme/training-attendance-api/internal/service"
	"github.com/noah-isme/training-attendance-api/pkg/config"
)

func testRouter(t *testing.T) (http.Handler, *service.AuthService) {
	t.Helper()
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	metrics := service.NewMetricsService()
	auth := service.NewAuthService(zap.NewNop(), service.AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour})
	router := newRouter(cfg, zap.NewNop(), routerDeps{
		auth:     auth,
		metrics:  metrics,
		sessions: handler.NewSessionHandler(service.NewSessionService(service.SessionDeps{}, nil, 0, nil)),
		history:  handler.NewHistoryHandler(service.NewHistoryService(nil, nil, nil, nil, nil)),
		courses:  handler.NewCourseHandler(service.NewCourseService(nil, nil, 0, nil)),
		ops:      handler.NewMetricsHandler(metrics, nil),
	})
	return router, auth
}

func TestRouterOpsEndpoints(t *testing.T) {
	router, _ := testRouter(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, recorder.Code, path)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouterRequiresAuthAndRole(t *testing.T) {
	router, auth := testRouter(t)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	token, err := auth.IssueToken(models.JWTClaims{UserID: "u1", Role: models.RoleStudent, StudentID: "s1"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/students/s2/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
