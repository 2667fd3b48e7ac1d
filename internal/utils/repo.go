package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseRepoURL extracts owner and name from a repository reference. Accepted
// forms are web URLs (https://github.com/octo/hello, optionally ending in
// .git or a sub-path), API URLs (https://api.github.com/repos/octo/hello) and
// bare "octo/hello".
func ParseRepoURL(repoURL string) (owner, name string, err error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return "", "", fmt.Errorf("empty repository URL")
	}

	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", err
	}

	path := strings.Trim(u.Path, "/")
	if strings.HasPrefix(u.Host, "api.") {
		path = strings.TrimPrefix(path, "repos/")
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository URL: %s", repoURL)
	}

	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
