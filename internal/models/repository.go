package models

import "time"

// Owner is the account a repository belongs to
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
	Type      string `json:"type,omitempty"`
}

// License is the detected license of a repository
type License struct {
	Key    string `json:"key,omitempty"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id,omitempty"`
}

// Repository is a GitHub repository as returned by the REST API. The numeric
// ID is the identity used for de-duplication.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           Owner     `json:"owner"`
	Description     *string   `json:"description"`
	HTMLURL         string    `json:"html_url"`
	URL             string    `json:"url"`
	Homepage        *string   `json:"homepage,omitempty"`
	Language        *string   `json:"language"`
	Topics          []string  `json:"topics,omitempty"`
	License         *License  `json:"license"`
	Private         bool      `json:"private"`
	Visibility      string    `json:"visibility,omitempty"`
	Fork            bool      `json:"fork"`
	Archived        bool      `json:"archived"`
	Disabled        bool      `json:"disabled"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	DefaultBranch   string    `json:"default_branch,omitempty"`
	LanguagesURL    string    `json:"languages_url"`
	ContributorsURL string    `json:"contributors_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

// AugmentedRepository is a repository plus statistics derived from further
// upstream calls. CommitCount is attributed to the viewer that requested it.
type AugmentedRepository struct {
	Repository
	Languages        map[string]int64 `json:"languages"`
	ContributorCount int              `json:"contributor_count"`
	CommitCount      int              `json:"commit_count"`
}
