package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/repofolio/repofolio/internal/batch"
	"github.com/repofolio/repofolio/internal/config"
	"github.com/repofolio/repofolio/internal/models"
)

const (
	StrategyAffiliated   = "affiliated"
	StrategyPullRequests = "merged_pull_requests"
	StrategyCommits      = "commit_search"
)

type strategyFunc func(ctx context.Context, token, login string) ([]models.Repository, error)

// DiscoveryService finds the repositories a viewer owns or contributed to and
// augments each of them under a concurrency limit.
type DiscoveryService struct {
	gateway     Gateway
	viewers     ViewerService
	augmenter   Augmenter
	concurrency int
	perPage     int
	logger      *logrus.Logger
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(gateway Gateway, viewers ViewerService, augmenter Augmenter, cfg *config.DiscoveryConfig, logger *logrus.Logger) *DiscoveryService {
	if cfg == nil {
		cfg = config.DefaultDiscoveryConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DiscoveryService{
		gateway:     gateway,
		viewers:     viewers,
		augmenter:   augmenter,
		concurrency: cfg.Concurrency,
		perPage:     cfg.PerPage,
		logger:      logger,
	}
}

// DiscoverAffiliated lists repositories the viewer owns, collaborates on or
// can see through an organization, most recently updated first.
func (s *DiscoveryService) DiscoverAffiliated(ctx context.Context, token string) ([]models.AugmentedRepository, error) {
	return s.discover(ctx, token, map[string]strategyFunc{
		StrategyAffiliated: s.affiliated,
	}, []string{StrategyAffiliated}, false)
}

// DiscoverContributed lists repositories reached through the viewer's merged
// pull requests and authored commits, most recently updated first.
func (s *DiscoveryService) DiscoverContributed(ctx context.Context, token string) ([]models.AugmentedRepository, error) {
	return s.discover(ctx, token, map[string]strategyFunc{
		StrategyPullRequests: s.mergedPullRequests,
		StrategyCommits:      s.commitSearch,
	}, []string{StrategyPullRequests, StrategyCommits}, true)
}

// DiscoverAll merges affiliated and contributed repositories. Each repository
// appears once, at the position of its first discovery.
func (s *DiscoveryService) DiscoverAll(ctx context.Context, token string) ([]models.AugmentedRepository, error) {
	return s.discover(ctx, token, map[string]strategyFunc{
		StrategyAffiliated:   s.affiliated,
		StrategyPullRequests: s.mergedPullRequests,
		StrategyCommits:      s.commitSearch,
	}, []string{StrategyAffiliated, StrategyPullRequests, StrategyCommits}, false)
}

func (s *DiscoveryService) discover(ctx context.Context, token string, strategies map[string]strategyFunc, order []string, byUpdated bool) ([]models.AugmentedRepository, error) {
	started := time.Now()

	viewer, err := s.viewers.GetViewer(ctx, token)
	if err != nil {
		return nil, err
	}
	logger := s.logger.WithField("login", viewer.Login)

	results := make([][]models.Repository, len(order))
	failures := make([]error, len(order))

	var g errgroup.Group
	for i, name := range order {
		run := strategies[name]
		g.Go(func() error {
			repos, err := run(ctx, token, viewer.Login)
			results[i] = repos
			if err != nil {
				failures[i] = &StrategyError{Strategy: name, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for i, err := range failures {
		if err == nil {
			continue
		}
		failed = append(failed, err)
		logger.WithFields(logrus.Fields{
			"strategy": order[i],
			"partial":  len(results[i]),
		}).WithError(err).Warn("Discovery strategy failed, continuing with remaining results")
	}

	repos := mergeByID(results...)
	augmented := s.augmentAll(ctx, token, viewer.Login, repos)
	if byUpdated {
		sort.SliceStable(augmented, func(i, j int) bool {
			return augmented[i].UpdatedAt.After(augmented[j].UpdatedAt)
		})
	}

	logger.WithFields(logrus.Fields{
		"repositories":      len(augmented),
		"failed_strategies": len(failed),
		"duration":          time.Since(started).String(),
	}).Info("Discovery completed")
	return augmented, nil
}

// augmentAll keeps every repository: one that could not be augmented is
// returned with empty statistics.
func (s *DiscoveryService) augmentAll(ctx context.Context, token, login string, repos []models.Repository) []models.AugmentedRepository {
	results := batch.MapWithLimit(ctx, s.concurrency, repos, func(ctx context.Context, repo models.Repository) (models.AugmentedRepository, error) {
		return s.augmenter.Augment(ctx, token, login, repo), nil
	})

	augmented := make([]models.AugmentedRepository, len(repos))
	for i, r := range results {
		if r.Err != nil {
			s.logger.WithField("repo", repos[i].FullName).WithError(r.Err).Warn("Augmentation failed")
			augmented[i] = models.AugmentedRepository{
				Repository: repos[i],
				Languages:  make(map[string]int64),
			}
			continue
		}
		augmented[i] = r.Value
	}
	return augmented
}

func (s *DiscoveryService) affiliated(ctx context.Context, token, _ string) ([]models.Repository, error) {
	items, err := s.gateway.FetchAllPages(ctx, token, "user/repos", url.Values{
		"affiliation": {"owner,collaborator,organization_member"},
		"sort":        {"updated"},
		"direction":   {"desc"},
		"per_page":    {fmt.Sprint(s.perPage)},
	})
	repos, decodeErr := decodeAll[models.Repository](items)
	return repos, errors.Join(err, decodeErr)
}

func (s *DiscoveryService) mergedPullRequests(ctx context.Context, token, login string) ([]models.Repository, error) {
	items, err := s.gateway.FetchAllPages(ctx, token, "search/issues", url.Values{
		"q":        {fmt.Sprintf("author:%s is:pr is:merged", login)},
		"per_page": {fmt.Sprint(s.perPage)},
	})
	issues, decodeErr := decodeAll[issueSearchItem](items)
	err = errors.Join(err, decodeErr)

	seen := make(map[string]bool)
	var repoURLs []string
	for _, issue := range issues {
		if issue.RepositoryURL == "" || seen[issue.RepositoryURL] {
			continue
		}
		seen[issue.RepositoryURL] = true
		repoURLs = append(repoURLs, issue.RepositoryURL)
	}

	return s.fetchRepositories(ctx, token, repoURLs, nil), err
}

func (s *DiscoveryService) commitSearch(ctx context.Context, token, login string) ([]models.Repository, error) {
	items, err := s.gateway.FetchAllPages(ctx, token, "search/commits", url.Values{
		"q":        {"author:" + login},
		"per_page": {fmt.Sprint(s.perPage)},
	})
	hits, decodeErr := decodeAll[commitSearchItem](items)
	err = errors.Join(err, decodeErr)

	// search hits embed a minimal repository without counts or timestamps
	seen := make(map[int64]bool)
	var repoURLs []string
	minimal := make(map[string]models.Repository)
	for _, hit := range hits {
		repo := hit.Repository
		if repo.ID == 0 || seen[repo.ID] {
			continue
		}
		seen[repo.ID] = true
		target := repo.URL
		if target == "" {
			target = "repos/" + repo.FullName
		}
		repoURLs = append(repoURLs, target)
		minimal[target] = repo
	}

	return s.fetchRepositories(ctx, token, repoURLs, minimal), err
}

// fetchRepositories loads the full repository behind each URL in order. A
// failed fetch falls back to the entry in fallback, or drops the repository.
func (s *DiscoveryService) fetchRepositories(ctx context.Context, token string, repoURLs []string, fallback map[string]models.Repository) []models.Repository {
	results := batch.MapWithLimit(ctx, s.concurrency, repoURLs, func(ctx context.Context, repoURL string) (models.Repository, error) {
		var repo models.Repository
		err := s.gateway.GetJSON(ctx, token, repoURL, nil, &repo)
		return repo, err
	})

	repos := make([]models.Repository, 0, len(results))
	for i, r := range results {
		if r.Err == nil && r.Value.ID != 0 {
			repos = append(repos, r.Value)
			continue
		}
		s.logger.WithField("url", repoURLs[i]).WithError(r.Err).Warn("Failed to fetch repository")
		if repo, ok := fallback[repoURLs[i]]; ok {
			repos = append(repos, repo)
		}
	}
	return repos
}

// mergeByID folds the groups into one list keyed by repository ID. The first
// occurrence of an ID wins.
func mergeByID(groups ...[]models.Repository) []models.Repository {
	seen := make(map[int64]bool)
	var merged []models.Repository
	for _, group := range groups {
		for _, repo := range group {
			if seen[repo.ID] {
				continue
			}
			seen[repo.ID] = true
			merged = append(merged, repo)
		}
	}
	return merged
}

func decodeAll[T any](items []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(items))
	var errs []error
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}

var _ Discoverer = (*DiscoveryService)(nil)
