package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repofolio/repofolio/internal/cache"
	"github.com/repofolio/repofolio/internal/config"
	"github.com/repofolio/repofolio/internal/models"
)

// CommitService counts and lists repository commits
type CommitService struct {
	gateway Gateway
	cache   *cache.Cache
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewCommitService creates a new commit service
func NewCommitService(gateway Gateway, c *cache.Cache, cfg *config.DiscoveryConfig, logger *logrus.Logger) *CommitService {
	if cfg == nil {
		cfg = config.DefaultDiscoveryConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CommitService{
		gateway: gateway,
		cache:   c,
		ttl:     cfg.CacheTTL,
		logger:  logger,
	}
}

// commitCacheKey scopes the count to the viewer as well as the repository,
// since the cache is shared between viewers.
func commitCacheKey(fullName, login string) string {
	return fmt.Sprintf("commit:%s:%s", fullName, login)
}

// CommitCount returns the number of commits on the default branch of repo
// authored by login. With one commit per page the page number of the Link
// rel="last" target is the total. Without a Link header there is at most one
// page, which cannot tell zero from one, so the list is fetched again without
// the page size and measured. Any upstream error yields zero.
func (s *CommitService) CommitCount(ctx context.Context, token string, repo models.Repository, login string) int {
	if login == "" {
		return 0
	}

	key := commitCacheKey(repo.FullName, login)
	var count int
	if s.cache.Get(ctx, key, &count) {
		return count
	}

	logger := s.logger.WithFields(logrus.Fields{
		"repo":   repo.FullName,
		"author": login,
	})
	endpoint := fmt.Sprintf("repos/%s/commits", repo.FullName)

	resp, err := s.gateway.Get(ctx, token, endpoint, url.Values{
		"author":   {login},
		"per_page": {"1"},
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to count commits")
		return 0
	}

	if resp.LastPage > 0 {
		count = resp.LastPage
	} else {
		resp, err = s.gateway.Get(ctx, token, endpoint, url.Values{"author": {login}})
		if err != nil {
			logger.WithError(err).Warn("Failed to count commits")
			return 0
		}
		var commits []json.RawMessage
		if err := json.Unmarshal(resp.Data, &commits); err != nil {
			logger.WithError(err).Warn("Unexpected commits payload")
			return 0
		}
		count = len(commits)
	}

	s.cache.Set(ctx, key, count, s.ttl)
	return count
}

// ListCommits returns up to perPage recent commits, optionally by one author
func (s *CommitService) ListCommits(ctx context.Context, token, owner, name, author string, perPage int) ([]CommitSummary, error) {
	params := url.Values{}
	if author != "" {
		params.Set("author", author)
	}
	if perPage > 0 {
		params.Set("per_page", fmt.Sprint(perPage))
	}

	var commits []CommitSummary
	if err := s.gateway.GetJSON(ctx, token, fmt.Sprintf("repos/%s/%s/commits", owner, name), params, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}
