package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repofolio/repofolio/internal/cache"
	"github.com/repofolio/repofolio/internal/db"
	apperrors "github.com/repofolio/repofolio/internal/errors"
)

// Service reads and writes portfolio profiles through a read-through cache
type Service struct {
	store  db.Store
	cache  *cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewService creates a new profile service. A non-positive ttl uses cache.ProfileTTL.
func NewService(store db.Store, c *cache.Cache, ttl time.Duration, logger *logrus.Logger) *Service {
	if ttl <= 0 {
		ttl = cache.ProfileTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:  store,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(login string) string {
	return "profile:" + login
}

// Get returns the profile document of login
func (s *Service) Get(ctx context.Context, login string) (json.RawMessage, error) {
	if login == "" {
		return nil, apperrors.NewValidationError("login is required", nil)
	}

	var document json.RawMessage
	if s.cache.Get(ctx, cacheKey(login), &document) {
		return document, nil
	}

	document, err := s.store.GetProfile(ctx, login)
	if errors.Is(err, db.ErrProfileNotFound) {
		return nil, apperrors.NewNotFoundError("profile not found", err)
	} else if err != nil {
		return nil, apperrors.NewInternalError("failed to load profile", err)
	}

	s.cache.Set(ctx, cacheKey(login), document, s.ttl)
	return document, nil
}

// Save validates and persists the profile document of login, then refreshes
// the cached copy.
func (s *Service) Save(ctx context.Context, login string, document json.RawMessage) (json.RawMessage, error) {
	if login == "" {
		return nil, apperrors.NewValidationError("login is required", nil)
	}
	trimmed := bytes.TrimSpace(document)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, apperrors.NewValidationError("profile must be a JSON object", nil)
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, trimmed); err != nil {
		return nil, apperrors.NewValidationError("profile must be a JSON object", err)
	}
	document = json.RawMessage(compacted.Bytes())

	if err := s.store.SaveProfile(ctx, login, document); err != nil {
		return nil, apperrors.NewInternalError("failed to save profile", err)
	}

	s.cache.Set(ctx, cacheKey(login), document, s.ttl)
	s.logger.WithField("login", login).Info("Profile saved")
	return document, nil
}

// Delete removes the profile of login
func (s *Service) Delete(ctx context.Context, login string) error {
	err := s.store.DeleteProfile(ctx, login)
	s.cache.Delete(ctx, cacheKey(login))
	if errors.Is(err, db.ErrProfileNotFound) {
		return apperrors.NewNotFoundError("profile not found", err)
	} else if err != nil {
		return apperrors.NewInternalError("failed to delete profile", err)
	}
	return nil
}
