package echo

import (
	"net/url"

	"github.com/labstack/echo/v4"
)

// Routes resolves the authorization endpoints from echo's named routes.
type Routes struct {
	e *echo.Echo
}

// NewRoutes returns Routes for e. The routes must be registered.
func NewRoutes(e *echo.Echo) Routes {
	return Routes{e: e}
}

// ListURL implements authlist.Routes.
func (r Routes) ListURL() string {
	return r.e.Reverse(RouteListAuthorizations)
}

// RevokeURL implements authlist.Routes.
func (r Routes) RevokeURL(clientID string) string {
	return r.e.Reverse(RouteRevokeAuthorization, url.PathEscape(clientID))
}
