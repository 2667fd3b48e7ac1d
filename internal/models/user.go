package models

import "encoding/json"

// Viewer is the authenticated GitHub account behind a request's credential.
// It lives for one request only.
type Viewer struct {
	ID          int64   `json:"id"`
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	AvatarURL   string  `json:"avatar_url"`
	HTMLURL     string  `json:"html_url"`
	Bio         *string `json:"bio"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`

	// Raw is the upstream document as received
	Raw json.RawMessage `json:"-"`
}
