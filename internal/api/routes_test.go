package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteRegistration(t *testing.T) {
	s := setupTestHandler()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "health is public",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "swagger ui",
			method:         http.MethodGet,
			path:           "/swagger/index.html",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "oauth login without client credentials",
			method:         http.MethodGet,
			path:           "/auth/github",
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "logout",
			method:         http.MethodGet,
			path:           "/auth/logout",
			expectedStatus: http.StatusFound,
		},
		{
			name:           "repositories require a token",
			method:         http.MethodGet,
			path:           "/api/v1/repos/all",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "user requires a token",
			method:         http.MethodGet,
			path:           "/api/v1/user",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "profile requires a token",
			method:         http.MethodPost,
			path:           "/api/v1/user/profile",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "profile deletion requires a token",
			method:         http.MethodDelete,
			path:           "/api/v1/user/profile",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "summarize requires a token",
			method:         http.MethodPost,
			path:           "/api/v1/ai/summarize",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/api/v1/repositories",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			s.router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	t.Run("summaries configured", func(t *testing.T) {
		s := setupTestHandler()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","cache":"memory","summaries":true}`, w.Body.String())
	})

	t.Run("summaries not configured", func(t *testing.T) {
		s := setupTestHandler()
		s.summaries.ExpectedCalls = nil
		s.summaries.On("Configured").Return(false)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","cache":"memory","summaries":false}`, w.Body.String())
	})
}

func TestMiddlewareSetup(t *testing.T) {
	s := setupTestHandler()

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", testOrigin)
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("generates a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		s.router.ServeHTTP(w, req)

		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("keeps the caller's request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "trace-123")
		s.router.ServeHTTP(w, req)

		assert.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))
	})
}
