//nolint:varnamelen
package echo

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.pilab.hu/grants/authlist"
	"go.pilab.hu/grants/domain"
	apierrors "go.pilab.hu/grants/errors"
	"go.pilab.hu/grants/middleware"
	"go.pilab.hu/grants/services"
)

// Route names, usable with echo's Reverse.
const (
	RouteListAuthorizations  = "account.authorizations"
	RouteRevokeAuthorization = "account.revokeAuthorization"
	RouteAuthorizationsPage  = "account.authorizationsPage"
)

// AuthorizationsAPI serves the account authorization endpoints.
type AuthorizationsAPI struct {
	service *services.AuthorizationService
	authn   *middleware.Authenticator
}

// NewAuthorizationsAPI initializes the API.
func NewAuthorizationsAPI(service *services.AuthorizationService, authn *middleware.Authenticator) *AuthorizationsAPI {
	return &AuthorizationsAPI{
		service: service,
		authn:   authn,
	}
}

// RegisterRoutes registers the named account routes.
func (a *AuthorizationsAPI) RegisterRoutes(e *echo.Echo) {
	requireAuth := middleware.RequireAuth(a.authn)
	csrf := middleware.CSRF()

	e.GET(authlist.ListPath, a.ListHandler, requireAuth).Name = RouteListAuthorizations
	e.DELETE(authlist.ListPath+"/:clientId", a.RevokeHandler, csrf, requireAuth).Name = RouteRevokeAuthorization
	e.GET(authlist.PagePath, a.PageHandler, csrf, requireAuth).Name = RouteAuthorizationsPage
}

// ListHandler returns the authenticated user's authorizations as JSON.
func (a *AuthorizationsAPI) ListHandler(c echo.Context) error {
	ctx := c.Request().Context()

	auths, err := a.service.List(ctx, domain.UserIDFromContext(ctx))
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, toRecords(auths))
}

// RevokeHandler revokes the authorization of the client in the path. Form
// posts (method override) are redirected back to the page.
func (a *AuthorizationsAPI) RevokeHandler(c echo.Context) error {
	ctx := c.Request().Context()

	clientID, err := pathParam(c, "clientId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest("malformed client id"))
	}

	if err = a.service.Revoke(ctx, domain.UserIDFromContext(ctx), clientID); err != nil {
		return writeServiceError(c, err)
	}

	if isFormOverride(c.Request()) {
		return c.Redirect(http.StatusSeeOther, c.Echo().Reverse(RouteAuthorizationsPage))
	}
	return c.NoContent(http.StatusNoContent)
}

// pathParam returns the decoded path parameter. Echo matches on the raw path
// only when the request path carries escapes that decoding loses (like %2F);
// otherwise the parameter is already decoded.
func pathParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

func isFormOverride(r *http.Request) bool {
	return r.PostForm != nil && r.PostForm.Get("_method") != ""
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorized(err.Error()))
	case errors.Is(err, services.ErrInvalidClientID):
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest(err.Error()))
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("Authorization request failed")
		return c.JSON(http.StatusInternalServerError, apierrors.NewServerError("internal server error"))
	}
}

func toRecords(auths []domain.Authorization) []authlist.Record {
	records := make([]authlist.Record, len(auths))
	for i, auth := range auths {
		records[i] = authlist.Record{
			ClientID:   auth.ClientID,
			ClientName: auth.ClientName,
			Issued:     auth.Issued(),
		}
	}
	return records
}
