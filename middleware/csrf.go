package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	apierrors "go.pilab.hu/grants/errors"
)

// CSRF token names: the form field forms submit, the cookie holding the
// expected token and the echo context key pages read it from.
const (
	CSRFFormField  = "_csrf"
	CSRFCookieName = "_csrf"
	CSRFContextKey = "csrf"
)

// CSRF returns echo middleware that protects cookie authenticated, state
// changing requests with a double submit token. Safe methods get the token
// issued (cookie plus context); requests carrying an Authorization header
// are not checked, browsers never attach one on their own.
func CSRF() echo.MiddlewareFunc {
	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get(echo.HeaderAuthorization) != ""
		},
		TokenLookup:    "form:" + CSRFFormField,
		ContextKey:     CSRFContextKey,
		CookieName:     CSRFCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
		ErrorHandler: func(err error, c echo.Context) error {
			log.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("CSRF check failed")
			return c.JSON(http.StatusForbidden, apierrors.NewForbidden("missing or invalid csrf token"))
		},
	})
}

// CSRFToken returns the token issued for the current request, if any.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(CSRFContextKey).(string)
	return token
}
