package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repofolio/repofolio/internal/cache"
	"github.com/repofolio/repofolio/internal/config"
	"github.com/repofolio/repofolio/internal/models"
)

const contributorsPerPage = 100

// RepositoryService reads single repositories and augments them with derived
// statistics, memoized in the shared cache.
type RepositoryService struct {
	gateway Gateway
	commits *CommitService
	cache   *cache.Cache
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewRepositoryService creates a new repository service
func NewRepositoryService(gateway Gateway, commits *CommitService, c *cache.Cache, cfg *config.DiscoveryConfig, logger *logrus.Logger) *RepositoryService {
	if cfg == nil {
		cfg = config.DefaultDiscoveryConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RepositoryService{
		gateway: gateway,
		commits: commits,
		cache:   c,
		ttl:     cfg.CacheTTL,
		logger:  logger,
	}
}

// Augment attaches languages, contributor count and the viewer's commit count
// to repo. Each field is resolved on its own and degrades to empty or zero.
func (s *RepositoryService) Augment(ctx context.Context, token, viewerLogin string, repo models.Repository) models.AugmentedRepository {
	return models.AugmentedRepository{
		Repository:       repo,
		Languages:        s.Languages(ctx, token, repo),
		ContributorCount: s.ContributorCount(ctx, token, repo),
		CommitCount:      s.commits.CommitCount(ctx, token, repo, viewerLogin),
	}
}

// Languages returns the language breakdown in bytes per language
func (s *RepositoryService) Languages(ctx context.Context, token string, repo models.Repository) map[string]int64 {
	key := "lang:" + repo.FullName
	languages := make(map[string]int64)
	if s.cache.Get(ctx, key, &languages) {
		return languages
	}

	endpoint := repo.LanguagesURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("repos/%s/languages", repo.FullName)
	}

	languages = make(map[string]int64)
	if err := s.gateway.GetJSON(ctx, token, endpoint, nil, &languages); err != nil {
		s.logger.WithFields(logrus.Fields{
			"repo": repo.FullName,
		}).WithError(err).Warn("Failed to fetch languages")
		return make(map[string]int64)
	}

	s.cache.Set(ctx, key, languages, s.ttl)
	return languages
}

// ContributorCount returns the number of contributors listed for repo. A
// response that is not a list, such as the 204 of an empty repository, counts
// as zero.
func (s *RepositoryService) ContributorCount(ctx context.Context, token string, repo models.Repository) int {
	key := "contrib:" + repo.FullName
	var count int
	if s.cache.Get(ctx, key, &count) {
		return count
	}

	endpoint := repo.ContributorsURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("repos/%s/contributors", repo.FullName)
	}

	resp, err := s.gateway.Get(ctx, token, endpoint, url.Values{"per_page": {fmt.Sprint(contributorsPerPage)}})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"repo": repo.FullName,
		}).WithError(err).Warn("Failed to fetch contributors")
		return 0
	}

	var contributors []json.RawMessage
	if resp.StatusCode == http.StatusNoContent || json.Unmarshal(resp.Data, &contributors) != nil {
		contributors = nil
	}

	count = len(contributors)
	s.cache.Set(ctx, key, count, s.ttl)
	return count
}

// GetRepository fetches a single repository
func (s *RepositoryService) GetRepository(ctx context.Context, token, owner, name string) (*models.Repository, error) {
	var repo models.Repository
	if err := s.gateway.GetJSON(ctx, token, fmt.Sprintf("repos/%s/%s", owner, name), nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListContributors returns the first page of contributors of a repository
func (s *RepositoryService) ListContributors(ctx context.Context, token, owner, name string) ([]Contributor, error) {
	resp, err := s.gateway.Get(ctx, token, fmt.Sprintf("repos/%s/%s/contributors", owner, name),
		url.Values{"per_page": {fmt.Sprint(contributorsPerPage)}})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent || len(resp.Data) == 0 {
		return nil, nil
	}

	var contributors []Contributor
	if err := json.Unmarshal(resp.Data, &contributors); err != nil {
		return nil, NewUpstreamError(resp.StatusCode, "unexpected contributors payload", err)
	}
	return contributors, nil
}

// GetReadme fetches the repository README in its encoded form
func (s *RepositoryService) GetReadme(ctx context.Context, token, owner, name string) (*Readme, error) {
	var readme Readme
	if err := s.gateway.GetJSON(ctx, token, fmt.Sprintf("repos/%s/%s/readme", owner, name), nil, &readme); err != nil {
		return nil, err
	}
	return &readme, nil
}

var _ Augmenter = (*RepositoryService)(nil)
