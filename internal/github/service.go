package github

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	apperrors "github.com/repofolio/repofolio/internal/errors"
	"github.com/repofolio/repofolio/internal/models"
)

// Service resolves the authenticated viewer
type Service struct {
	gateway Gateway
	logger  *logrus.Logger
}

// NewService creates a new viewer service
func NewService(gateway Gateway, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		gateway: gateway,
		logger:  logger,
	}
}

// GetViewer fetches GET /user for the token. A rejected credential becomes an
// unauthorized error, any other failure an upstream error.
func (s *Service) GetViewer(ctx context.Context, token string) (*models.Viewer, error) {
	resp, err := s.gateway.Get(ctx, token, "user", nil)
	if err != nil {
		return nil, classifyViewerError(err)
	}

	var viewer models.Viewer
	if err := json.Unmarshal(resp.Data, &viewer); err != nil {
		return nil, apperrors.NewUpstreamError("unexpected viewer payload", err)
	}
	if viewer.Login == "" {
		return nil, apperrors.NewUpstreamError("viewer has no login", nil)
	}
	viewer.Raw = resp.Data

	s.logger.WithField("login", viewer.Login).Debug("Resolved viewer")
	return &viewer, nil
}

func classifyViewerError(err error) error {
	if apperrors.TypeOf(err) != "" {
		return err
	}
	if IsUpstreamStatus(err, http.StatusUnauthorized) {
		return apperrors.NewUnauthorizedError("GitHub rejected the access token", err)
	}
	return apperrors.NewUpstreamError("failed to resolve viewer", err)
}

var _ ViewerService = (*Service)(nil)
