package echo

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.pilab.hu/grants/authlist"
	"go.pilab.hu/grants/domain"
	"go.pilab.hu/grants/middleware"
	"go.pilab.hu/grants/services"
)

// errUnavailable replaces storage errors shown on the page.
var errUnavailable = errors.New("the service is temporarily unavailable")

// serviceGateway runs the list component in process, on behalf of one user.
type serviceGateway struct {
	service *services.AuthorizationService
	userID  string
}

func (g serviceGateway) List(ctx context.Context) ([]authlist.Record, error) {
	auths, err := g.service.List(ctx, g.userID)
	if err != nil {
		return nil, publicError(err)
	}
	return toRecords(auths), nil
}

func (g serviceGateway) Revoke(ctx context.Context, clientID string) error {
	return publicError(g.service.Revoke(ctx, g.userID, clientID))
}

// publicError keeps the errors a user can act on and logs the rest.
func publicError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidClientID):
		return err
	default:
		log.Error().Err(err).Msg("Authorization page request failed")
		return errUnavailable
	}
}

// PageHandler renders the authorized applications page.
func (a *AuthorizationsAPI) PageHandler(c echo.Context) error {
	ctx := c.Request().Context()

	list := authlist.NewList(serviceGateway{service: a.service, userID: domain.UserIDFromContext(ctx)})
	defer list.Close()

	list.Mount(ctx)
	list.Wait()

	table := authlist.Table(list.State(), NewRoutes(c.Echo()), authlist.WithCSRFToken(middleware.CSRFToken(c)))
	page := authorizationsPage(table)

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return page.Render(ctx, c.Response())
}

func authorizationsPage(table templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Authorized applications</title></head><body><div class="container"><h1>Authorized applications</h1>`); err != nil {
			return err
		}
		if err := table.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></body></html>`)
		return err
	})
}
