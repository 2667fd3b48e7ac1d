package github

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/repofolio/repofolio/internal/models"
)

// Gateway performs authenticated reads against the GitHub REST API
type Gateway interface {
	// Get performs a single request and returns the page with its links
	Get(ctx context.Context, token, rawURL string, params url.Values) (*Response, error)

	// GetJSON performs a single request and decodes the body into v
	GetJSON(ctx context.Context, token, rawURL string, params url.Values, v interface{}) error

	// FetchAllPages follows pagination and returns every item, or the items
	// gathered before a failure together with the error
	FetchAllPages(ctx context.Context, token, rawURL string, params url.Values) ([]json.RawMessage, error)
}

// ViewerService resolves the account behind a credential
type ViewerService interface {
	GetViewer(ctx context.Context, token string) (*models.Viewer, error)
}

// Augmenter attaches languages, contributor count and the viewer's commit
// count to a repository. It never fails: unavailable statistics are zero.
type Augmenter interface {
	Augment(ctx context.Context, token, viewerLogin string, repo models.Repository) models.AugmentedRepository
}

// Discoverer lists the repositories a viewer owns or contributed to
type Discoverer interface {
	// DiscoverAffiliated lists repositories the viewer is owner, collaborator or org member of
	DiscoverAffiliated(ctx context.Context, token string) ([]models.AugmentedRepository, error)

	// DiscoverContributed lists repositories from merged PRs and authored
	// commits, most recently updated first
	DiscoverContributed(ctx context.Context, token string) ([]models.AugmentedRepository, error)

	// DiscoverAll merges every strategy, de-duplicated by repository ID
	DiscoverAll(ctx context.Context, token string) ([]models.AugmentedRepository, error)
}

var _ Gateway = (*Client)(nil)
