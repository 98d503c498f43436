package authlist

import (
	"net/url"
	"strings"
)

// Paths of the account authorization endpoints.
const (
	ListPath = "/api/account/authorizations"
	PagePath = "/account/authorizations"
)

// Routes resolves the endpoint URLs a List talks to.
type Routes interface {
	ListURL() string
	RevokeURL(clientID string) string
}

// BaseRoutes resolves the endpoints below a base URL such as
// "https://sso.example.com". An empty base yields absolute paths.
type BaseRoutes struct {
	BaseURL string
}

// ListURL implements Routes.
func (r BaseRoutes) ListURL() string {
	return strings.TrimRight(r.BaseURL, "/") + ListPath
}

// RevokeURL implements Routes. The client id is path escaped.
func (r BaseRoutes) RevokeURL(clientID string) string {
	return r.ListURL() + "/" + url.PathEscape(clientID)
}
