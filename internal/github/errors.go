package github

import (
	"errors"
	"fmt"
)

// UpstreamError is returned for any non-2xx GitHub response or a request
// that never produced one (StatusCode 0).
type UpstreamError struct {
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("GitHub API error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GitHub API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new UpstreamError with the given status code and message
func NewUpstreamError(statusCode int, message string, err error) error {
	return &UpstreamError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// IsUpstreamStatus reports whether err carries an upstream response with the given status
func IsUpstreamStatus(err error, statusCode int) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.StatusCode == statusCode
}

// StrategyError marks the failure of a single discovery strategy. It is
// logged and the strategy's results are left out of the merge.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("discovery strategy %s failed: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}
