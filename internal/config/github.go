package config

import "time"

// GitHubConfig holds GitHub-specific configuration. There is no server-side
// API token: upstream calls always carry the viewer's own credential.
type GitHubConfig struct {
	APIBaseURL     string
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	Scopes         []string
	RequestTimeout time.Duration
	UserAgent      string
}

// DefaultGitHubConfig returns the default GitHub configuration
func DefaultGitHubConfig() *GitHubConfig {
	return &GitHubConfig{
		APIBaseURL:     "https://api.github.com/",
		Scopes:         []string{"repo", "read:user", "read:org"},
		RequestTimeout: 30 * time.Second,
		UserAgent:      "repofolio",
	}
}

// OAuthConfigured reports whether the login flow can be offered
func (c *GitHubConfig) OAuthConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
