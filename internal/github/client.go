package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/repofolio/repofolio/internal/config"
	apperrors "github.com/repofolio/repofolio/internal/errors"
)

const maxErrorBodyBytes = 64 << 10

// Response is one decoded upstream page
type Response struct {
	Data       json.RawMessage
	Header     http.Header
	StatusCode int
	// NextURL is the Link rel="next" target, empty on the last page
	NextURL string
	// LastPage is the page number of the Link rel="last" target, 0 when absent
	LastPage int
}

// Client is the gateway to the GitHub REST API. It holds no credential of its
// own: every call carries the bearer token of the viewer it runs for.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	timeout    time.Duration
	userAgent  string
	maxPages   int
	logger     *logrus.Logger
}

// ClientOption allows configuring the GitHub client
type ClientOption func(*Client)

// WithHTTPClient sets the transport used beneath the per-call token source
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxPages caps how many pages FetchAllPages follows. Zero means no cap.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		c.maxPages = n
	}
}

// NewClient creates a GitHub gateway from configuration
func NewClient(cfg *config.GitHubConfig, logger *logrus.Logger, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultGitHubConfig()
	}
	base := cfg.APIBaseURL
	if base == "" {
		base = config.DefaultGitHubConfig().APIBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.APIBaseURL, err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client := &Client{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		timeout:    cfg.RequestTimeout,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// forToken builds a go-github client that authenticates as the given token
func (c *Client) forToken(ctx context.Context, token string) *gh.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), ts)

	client := gh.NewClient(httpClient)
	client.BaseURL = c.baseURL
	if c.userAgent != "" {
		client.UserAgent = c.userAgent
	}
	return client
}

// resolve turns a path relative to the API root or an absolute upstream URL
// into a request URL carrying params.
func (c *Client) resolve(rawURL string, params url.Values) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", apperrors.NewValidationError("invalid upstream URL", err)
	}
	target := c.baseURL.ResolveReference(ref)
	if len(params) > 0 {
		query := target.Query()
		for key, values := range params {
			query.Del(key)
			for _, v := range values {
				query.Add(key, v)
			}
		}
		target.RawQuery = query.Encode()
	}
	return target.String(), nil
}

// Get performs one authenticated GET and returns the raw JSON body together
// with the pagination links. Non-2xx responses become *UpstreamError.
func (c *Client) Get(ctx context.Context, token, rawURL string, params url.Values) (*Response, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("missing access token", nil)
	}
	target, err := c.resolve(rawURL, params)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client := c.forToken(ctx, token)
	req, err := client.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var data json.RawMessage
	resp, err := client.Do(ctx, req, &data)
	if err != nil {
		upstream := toUpstreamError(resp, err)
		c.logger.WithFields(logrus.Fields{
			"url":    target,
			"status": upstream.StatusCode,
		}).WithError(err).Debug("GitHub request failed")
		return nil, upstream
	}

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < resp.Rate.Limit/10 {
		c.logger.WithFields(logrus.Fields{
			"remaining": resp.Rate.Remaining,
			"reset":     resp.Rate.Reset.Time,
		}).Warn("GitHub rate limit nearly exhausted")
	}

	return &Response{
		Data:       data,
		Header:     resp.Header,
		StatusCode: resp.StatusCode,
		NextURL:    parseLinkHeader(resp.Header.Get("Link"))["next"],
		LastPage:   resp.LastPage,
	}, nil
}

// GetJSON performs Get and decodes the body into v
func (c *Client) GetJSON(ctx context.Context, token, rawURL string, params url.Values, v interface{}) error {
	resp, err := c.Get(ctx, token, rawURL, params)
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		return NewUpstreamError(resp.StatusCode, "failed to decode response", err)
	}
	return nil
}

// FetchAllPages follows Link rel="next" from rawURL and concatenates the items
// of every page. Pages may be plain arrays or search results wrapping their
// list in "items". On failure the items gathered so far are returned together
// with the error.
func (c *Client) FetchAllPages(ctx context.Context, token, rawURL string, params url.Values) ([]json.RawMessage, error) {
	var items []json.RawMessage
	next, query := rawURL, params

	for page := 1; next != ""; page++ {
		if c.maxPages > 0 && page > c.maxPages {
			c.logger.WithFields(logrus.Fields{
				"url":       rawURL,
				"max_pages": c.maxPages,
			}).Warn("Pagination limit reached, remaining pages skipped")
			break
		}

		resp, err := c.Get(ctx, token, next, query)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"url":   next,
				"page":  page,
				"items": len(items),
			}).WithError(err).Warn("Pagination stopped early")
			return items, err
		}

		pageItems, err := decodeItems(resp.Data)
		if err != nil {
			return items, NewUpstreamError(resp.StatusCode, "unexpected page shape", err)
		}
		items = append(items, pageItems...)

		// the next link already carries the original query
		next, query = resp.NextURL, nil
	}

	return items, nil
}

func decodeItems(data json.RawMessage) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapped struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Items, nil
}

func toUpstreamError(resp *gh.Response, err error) *UpstreamError {
	var (
		errResp  *gh.ErrorResponse
		rateErr  *gh.RateLimitError
		abuseErr *gh.AbuseRateLimitError
		httpResp *http.Response
		message  string
	)
	switch {
	case errors.As(err, &rateErr):
		httpResp, message = rateErr.Response, rateErr.Message
	case errors.As(err, &abuseErr):
		httpResp, message = abuseErr.Response, abuseErr.Message
	case errors.As(err, &errResp):
		httpResp, message = errResp.Response, errResp.Message
	case resp != nil && resp.Response != nil:
		httpResp, message = resp.Response, "request failed"
	default:
		return &UpstreamError{Message: "request failed", Err: err}
	}

	upstream := &UpstreamError{Message: message, Err: err}
	if httpResp != nil {
		upstream.StatusCode = httpResp.StatusCode
		if httpResp.Body != nil {
			body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBodyBytes))
			upstream.Body = string(body)
		}
	}
	if upstream.Message == "" {
		upstream.Message = http.StatusText(upstream.StatusCode)
	}
	return upstream
}
