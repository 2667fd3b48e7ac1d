package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/repofolio/repofolio/internal/auth"
	apperrors "github.com/repofolio/repofolio/internal/errors"
	"github.com/repofolio/repofolio/internal/github"
	"github.com/repofolio/repofolio/internal/models"
	"github.com/repofolio/repofolio/internal/summary"
)

const (
	testToken  = "gho_test-token"
	testOrigin = "http://localhost:3000"
)

// MockDiscoverer is a mock implementation of github.Discoverer
type MockDiscoverer struct {
	mock.Mock
}

func (m *MockDiscoverer) DiscoverAffiliated(ctx context.Context, token string) ([]models.AugmentedRepository, error) {
	args := m.Called(ctx, token)
	repos, _ := args.Get(0).([]models.AugmentedRepository)
	return repos, args.Error(1)
}

func (m *MockDiscoverer) DiscoverContributed(ctx context.Context, token string) ([]models.AugmentedRepository, error) {
	args := m.Called(ctx, token)
	repos, _ := args.Get(0).([]models.AugmentedRepository)
	return repos, args.Error(1)
}

func (m *MockDiscoverer) DiscoverAll(ctx context.Context, token string) ([]models.AugmentedRepository, error) {
	args := m.Called(ctx, token)
	repos, _ := args.Get(0).([]models.AugmentedRepository)
	return repos, args.Error(1)
}

// MockViewerService is a mock implementation of github.ViewerService
type MockViewerService struct {
	mock.Mock
}

func (m *MockViewerService) GetViewer(ctx context.Context, token string) (*models.Viewer, error) {
	args := m.Called(ctx, token)
	viewer, _ := args.Get(0).(*models.Viewer)
	return viewer, args.Error(1)
}

// MockProfileService is a mock implementation of ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, login string) (json.RawMessage, error) {
	args := m.Called(ctx, login)
	document, _ := args.Get(0).(json.RawMessage)
	return document, args.Error(1)
}

func (m *MockProfileService) Save(ctx context.Context, login string, document json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, login, document)
	saved, _ := args.Get(0).(json.RawMessage)
	return saved, args.Error(1)
}

func (m *MockProfileService) Delete(ctx context.Context, login string) error {
	args := m.Called(ctx, login)
	return args.Error(0)
}

// MockSummarizer is a mock implementation of Summarizer
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, token string, req summary.Request) (string, error) {
	args := m.Called(ctx, token, req)
	return args.String(0), args.Error(1)
}

func (m *MockSummarizer) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

type testServer struct {
	discovery *MockDiscoverer
	viewers   *MockViewerService
	profiles  *MockProfileService
	summaries *MockSummarizer
	router    *gin.Engine
}

func setupTestHandler() *testServer {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil)) // Discard logs during tests

	s := &testServer{
		discovery: new(MockDiscoverer),
		viewers:   new(MockViewerService),
		profiles:  new(MockProfileService),
		summaries: new(MockSummarizer),
	}
	s.summaries.On("Configured").Return(true).Maybe()
	handler := NewHandler(s.discovery, s.viewers, s.profiles, s.summaries, "memory", logger)
	authHandler := auth.NewHandlerWithOAuth(nil, testOrigin, false, logger)
	s.router = SetupRouter(handler, authHandler, []string{testOrigin}, logger)
	return s
}

// do sends an authenticated request
func (s *testServer) do(method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func augmented(id int64, name string) models.AugmentedRepository {
	return models.AugmentedRepository{
		Repository:       models.Repository{ID: id, Name: name, FullName: "octo/" + name},
		Languages:        map[string]int64{"Go": 1024},
		ContributorCount: 2,
		CommitCount:      34,
	}
}

func TestHandler_ListRepositories(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		method     string
		repos      []models.AugmentedRepository
		err        error
		wantStatus int
		wantIDs    []int64
		wantCode   string
	}{
		{
			name:       "affiliated",
			path:       "/api/v1/repos/affiliated",
			method:     "DiscoverAffiliated",
			repos:      []models.AugmentedRepository{augmented(2, "b"), augmented(1, "a")},
			wantStatus: http.StatusOK,
			wantIDs:    []int64{2, 1},
		},
		{
			name:       "contributed",
			path:       "/api/v1/repos/contributed",
			method:     "DiscoverContributed",
			repos:      []models.AugmentedRepository{augmented(3, "c")},
			wantStatus: http.StatusOK,
			wantIDs:    []int64{3},
		},
		{
			name:       "all",
			path:       "/api/v1/repos/all",
			method:     "DiscoverAll",
			repos:      []models.AugmentedRepository{augmented(1, "a"), augmented(2, "b"), augmented(3, "c")},
			wantStatus: http.StatusOK,
			wantIDs:    []int64{1, 2, 3},
		},
		{
			name:       "empty result is an empty array",
			path:       "/api/v1/repos/all",
			method:     "DiscoverAll",
			wantStatus: http.StatusOK,
			wantIDs:    []int64{},
		},
		{
			name:       "viewer rejected",
			path:       "/api/v1/repos/all",
			method:     "DiscoverAll",
			err:        apperrors.NewUnauthorizedError("GitHub rejected the access token", nil),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "every strategy failed",
			path:       "/api/v1/repos/contributed",
			method:     "DiscoverContributed",
			err:        apperrors.NewUpstreamError("every discovery strategy failed", errors.New("boom")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestHandler()
			s.discovery.On(tt.method, mock.Anything, testToken).Return(tt.repos, tt.err)

			w := s.do(http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
				return
			}

			var repos []models.AugmentedRepository
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repos))
			require.NotNil(t, repos)
			ids := make([]int64, 0, len(repos))
			for _, r := range repos {
				ids = append(ids, r.ID)
				assert.Equal(t, 34, r.CommitCount)
			}
			assert.Equal(t, tt.wantIDs, ids)
			s.discovery.AssertExpectations(t)
		})
	}
}

func TestHandler_RepositoryResponseShape(t *testing.T) {
	s := setupTestHandler()
	s.discovery.On("DiscoverAll", mock.Anything, testToken).
		Return([]models.AugmentedRepository{augmented(7, "hello")}, nil)

	w := s.do(http.MethodGet, "/api/v1/repos/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "octo/hello", raw[0]["full_name"])
	assert.Equal(t, float64(2), raw[0]["contributor_count"])
	assert.Equal(t, float64(34), raw[0]["commit_count"])
	assert.Equal(t, map[string]interface{}{"Go": float64(1024)}, raw[0]["languages"])
}

func TestHandler_GetViewer(t *testing.T) {
	t.Run("returns the upstream document verbatim", func(t *testing.T) {
		s := setupTestHandler()
		raw := json.RawMessage(`{"login":"octo","id":1,"plan":{"name":"pro"}}`)
		s.viewers.On("GetViewer", mock.Anything, testToken).Return(&models.Viewer{ID: 1, Login: "octo", Raw: raw}, nil)

		w := s.do(http.MethodGet, "/api/v1/user", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, string(raw), w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("upstream 401 maps to 401", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).
			Return(nil, github.NewUpstreamError(http.StatusUnauthorized, "Bad credentials", nil))

		w := s.do(http.MethodGet, "/api/v1/user", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeError(t, w).Error)
	})

	t.Run("other upstream failures map to 502", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).
			Return(nil, github.NewUpstreamError(http.StatusInternalServerError, "Server Error", nil))

		w := s.do(http.MethodGet, "/api/v1/user", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "GitHub request failed", decodeError(t, w).Message)
	})
}

func TestHandler_GetProfile(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).Return(&models.Viewer{Login: "octo"}, nil)
		s.profiles.On("Get", mock.Anything, "octo").Return(json.RawMessage(`{"headline":"Backend engineer"}`), nil)

		w := s.do(http.MethodGet, "/api/v1/user/profile", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"headline":"Backend engineer"}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).Return(&models.Viewer{Login: "octo"}, nil)
		s.profiles.On("Get", mock.Anything, "octo").Return(nil, apperrors.NewNotFoundError("profile not found", nil))

		w := s.do(http.MethodGet, "/api/v1/user/profile", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "not_found", resp.Error)
		assert.Equal(t, "profile not found", resp.Message)
	})
}

func TestHandler_SaveProfile(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		s := setupTestHandler()
		body := `{"headline":"Backend engineer"}`
		s.viewers.On("GetViewer", mock.Anything, testToken).Return(&models.Viewer{Login: "octo"}, nil)
		s.profiles.On("Save", mock.Anything, "octo", json.RawMessage(body)).Return(json.RawMessage(body), nil)

		w := s.do(http.MethodPost, "/api/v1/user/profile", strings.NewReader(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"profile":{"headline":"Backend engineer"}}`, w.Body.String())
		s.profiles.AssertExpectations(t)
	})

	t.Run("rejected document", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).Return(&models.Viewer{Login: "octo"}, nil)
		s.profiles.On("Save", mock.Anything, "octo", mock.Anything).
			Return(nil, apperrors.NewValidationError("profile must be a JSON object", nil))

		w := s.do(http.MethodPost, "/api/v1/user/profile", strings.NewReader(`[1,2]`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_input", decodeError(t, w).Error)
	})
}

func TestHandler_DeleteProfile(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).Return(&models.Viewer{Login: "octo"}, nil)
		s.profiles.On("Delete", mock.Anything, "octo").Return(nil)

		w := s.do(http.MethodDelete, "/api/v1/user/profile", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		s.profiles.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).Return(&models.Viewer{Login: "octo"}, nil)
		s.profiles.On("Delete", mock.Anything, "octo").Return(apperrors.NewNotFoundError("profile not found", nil))

		w := s.do(http.MethodDelete, "/api/v1/user/profile", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decodeError(t, w).Error)
	})

	t.Run("viewer rejected", func(t *testing.T) {
		s := setupTestHandler()
		s.viewers.On("GetViewer", mock.Anything, testToken).
			Return(nil, apperrors.NewUnauthorizedError("GitHub rejected the access token", nil))

		w := s.do(http.MethodDelete, "/api/v1/user/profile", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		s.profiles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestHandler_Summarize(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := setupTestHandler()
		req := summary.Request{URL: "https://github.com/octo/hello", Title: "Hello"}
		s.summaries.On("Summarize", mock.Anything, testToken, req).Return("A tidy service.", nil)

		w := s.do(http.MethodPost, "/api/v1/ai/summarize", strings.NewReader(`{"url":"https://github.com/octo/hello","title":"Hello"}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"summary":"A tidy service."}`, w.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		s := setupTestHandler()

		w := s.do(http.MethodPost, "/api/v1/ai/summarize", strings.NewReader(`{"owner":`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		s.summaries.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
	})

	errorTests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing target", apperrors.NewValidationError("missing owner or repo name", nil), http.StatusBadRequest, "invalid_input"},
		{"repository not found", apperrors.NewNotFoundError("repository not found", nil), http.StatusNotFound, "not_found"},
		{"generator unavailable", apperrors.NewNotConfiguredError("summary generation is not configured"), http.StatusServiceUnavailable, "not_configured"},
		{"generator failed", apperrors.NewUpstreamError("failed to generate summary", errors.New("quota")), http.StatusBadGateway, "upstream_error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestHandler()
			s.summaries.On("Summarize", mock.Anything, testToken, mock.Anything).Return("", tt.err)

			w := s.do(http.MethodPost, "/api/v1/ai/summarize", strings.NewReader(`{"owner":"octo","repo":"hello"}`))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"wrapped app error", errors.Join(errors.New("ctx"), apperrors.NewNotFoundError("gone", nil)), http.StatusNotFound},
		{"internal app error", apperrors.NewInternalError("db down", nil), http.StatusInternalServerError},
		{"bare upstream 401", github.NewUpstreamError(http.StatusUnauthorized, "Bad credentials", nil), http.StatusUnauthorized},
		{"bare upstream 403", github.NewUpstreamError(http.StatusForbidden, "rate limited", nil), http.StatusBadGateway},
		{"transport failure", github.NewUpstreamError(0, "dial tcp", context.DeadlineExceeded), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
