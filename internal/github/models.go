package github

import "github.com/repofolio/repofolio/internal/models"

// issueSearchItem is one hit of GET /search/issues. Only the link back to the
// repository is needed.
type issueSearchItem struct {
	ID            int64  `json:"id"`
	Number        int    `json:"number"`
	RepositoryURL string `json:"repository_url"`
	PullRequest   *struct {
		MergedAt *string `json:"merged_at"`
	} `json:"pull_request,omitempty"`
}

// commitSearchItem is one hit of GET /search/commits, which embeds a minimal
// repository object.
type commitSearchItem struct {
	SHA        string            `json:"sha"`
	Repository models.Repository `json:"repository"`
}

// Contributor is one entry of GET /repos/{owner}/{repo}/contributors
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// CommitSummary is one entry of GET /repos/{owner}/{repo}/commits
type CommitSummary struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

// Readme is GET /repos/{owner}/{repo}/readme. Content is base64 encoded.
type Readme struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
