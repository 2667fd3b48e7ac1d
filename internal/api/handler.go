package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/repofolio/repofolio/internal/auth"
	apperrors "github.com/repofolio/repofolio/internal/errors"
	"github.com/repofolio/repofolio/internal/github"
	"github.com/repofolio/repofolio/internal/models"
	"github.com/repofolio/repofolio/internal/summary"
)

// ProfileService persists portfolio profiles per GitHub login
type ProfileService interface {
	Get(ctx context.Context, login string) (json.RawMessage, error)
	Save(ctx context.Context, login string, document json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, login string) error
}

// Summarizer writes a portfolio description of a repository
type Summarizer interface {
	Summarize(ctx context.Context, token string, req summary.Request) (string, error)
	Configured() bool
}

// Handler handles HTTP requests
type Handler struct {
	discovery    github.Discoverer
	viewers      github.ViewerService
	profiles     ProfileService
	summaries    Summarizer
	cacheBackend string
	logger       *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(
	discovery github.Discoverer,
	viewers github.ViewerService,
	profiles ProfileService,
	summaries Summarizer,
	cacheBackend string,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		discovery:    discovery,
		viewers:      viewers,
		profiles:     profiles,
		summaries:    summaries,
		cacheBackend: cacheBackend,
		logger:       logger,
	}
}

// GetAffiliatedRepositories godoc
// @Summary List affiliated repositories
// @Description Repositories the viewer owns, collaborates on or reaches through an organization, most recently updated first
// @Tags repositories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.AugmentedRepository
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /repos/affiliated [get]
func (h *Handler) GetAffiliatedRepositories(c *gin.Context) {
	h.listRepositories(c, "affiliated", h.discovery.DiscoverAffiliated)
}

// GetContributedRepositories godoc
// @Summary List contributed repositories
// @Description Repositories the viewer merged pull requests into or authored commits in, most recently updated first
// @Tags repositories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.AugmentedRepository
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /repos/contributed [get]
func (h *Handler) GetContributedRepositories(c *gin.Context) {
	h.listRepositories(c, "contributed", h.discovery.DiscoverContributed)
}

// GetAllRepositories godoc
// @Summary List all repositories
// @Description Affiliated and contributed repositories merged by repository ID
// @Tags repositories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.AugmentedRepository
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /repos/all [get]
func (h *Handler) GetAllRepositories(c *gin.Context) {
	h.listRepositories(c, "all", h.discovery.DiscoverAll)
}

func (h *Handler) listRepositories(c *gin.Context, variant string, discover func(context.Context, string) ([]models.AugmentedRepository, error)) {
	repos, err := discover(c.Request.Context(), auth.Token(c))
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	if repos == nil {
		repos = []models.AugmentedRepository{}
	}

	h.logger.WithFields(logrus.Fields{
		"variant":    variant,
		"count":      len(repos),
		"request_id": c.GetString(requestIDKey),
	}).Info("Listed repositories")
	c.JSON(http.StatusOK, repos)
}

// GetViewer godoc
// @Summary Get the authenticated user
// @Description Returns the GitHub user document of the access token owner as received
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Viewer
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /user [get]
func (h *Handler) GetViewer(c *gin.Context) {
	viewer, err := h.viewers.GetViewer(c.Request.Context(), auth.Token(c))
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	if len(viewer.Raw) == 0 {
		c.JSON(http.StatusOK, viewer)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", viewer.Raw)
}

// GetProfile godoc
// @Summary Get the saved portfolio profile
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /user/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	viewer, err := h.viewers.GetViewer(c.Request.Context(), auth.Token(c))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	document, err := h.profiles.Get(c.Request.Context(), viewer.Login)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", document)
}

// SaveProfile godoc
// @Summary Save the portfolio profile
// @Description Replaces the stored profile document of the authenticated user
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param profile body object true "Profile document"
// @Success 200 {object} SaveProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /user/profile [post]
func (h *Handler) SaveProfile(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.respondWithError(c, apperrors.NewValidationError("failed to read request body", err))
		return
	}

	viewer, err := h.viewers.GetViewer(c.Request.Context(), auth.Token(c))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	document, err := h.profiles.Save(c.Request.Context(), viewer.Login, body)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, SaveProfileResponse{OK: true, Profile: document})
}

// DeleteProfile godoc
// @Summary Delete the portfolio profile
// @Description Removes the stored profile document of the authenticated user
// @Tags user
// @Security ApiKeyAuth
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /user/profile [delete]
func (h *Handler) DeleteProfile(c *gin.Context) {
	viewer, err := h.viewers.GetViewer(c.Request.Context(), auth.Token(c))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	if err := h.profiles.Delete(c.Request.Context(), viewer.Login); err != nil {
		h.respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summarize godoc
// @Summary Generate a project description
// @Description Writes a short portfolio description from the repository's contributors, the viewer's commits and the README
// @Tags ai
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body summary.Request true "Repository to describe"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /ai/summarize [post]
func (h *Handler) Summarize(c *gin.Context) {
	var req summary.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, apperrors.NewValidationError("invalid request body", err))
		return
	}

	text, err := h.summaries.Summarize(c.Request.Context(), auth.Token(c), req)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{Summary: text})
}

// Health godoc
// @Summary Health check
// @Description Reports the cache backend and whether AI summaries are configured
// @Tags operations
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Cache:     h.cacheBackend,
		Summaries: h.summaries.Configured(),
	})
}

// respondWithError maps an error onto a status code and a stable error code
func (h *Handler) respondWithError(c *gin.Context, err error) {
	status, code := classify(err)

	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"status":     status,
		"path":       c.FullPath(),
		"request_id": c.GetString(requestIDKey),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.JSON(status, ErrorResponse{Error: code, Message: message(err)})
}

func classify(err error) (int, string) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case apperrors.ErrInvalidInput:
		return http.StatusBadRequest, "invalid_input"
	case apperrors.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case apperrors.ErrUpstream:
		return http.StatusBadGateway, "upstream_error"
	case apperrors.ErrNotConfigured:
		return http.StatusServiceUnavailable, "not_configured"
	}

	var upstream *github.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.StatusCode == http.StatusUnauthorized {
			return http.StatusUnauthorized, "unauthorized"
		}
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

func message(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var upstream *github.UpstreamError
	if errors.As(err, &upstream) {
		return "GitHub request failed"
	}
	return "internal server error"
}
