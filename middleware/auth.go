package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.pilab.hu/grants/domain"
	apierrors "go.pilab.hu/grants/errors"
)

// SessionCookieName is the cookie browsers carry the access token in.
const SessionCookieName = "sso_token"

// RequireAuth returns echo middleware that authenticates the request with a
// bearer token or the session cookie and stores the token in the request
// context. Unauthenticated requests get a 401 JSON error.
func RequireAuth(authn *Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			tokenValue, err := tokenFromRequest(req)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorized(err.Error()))
			}

			token, err := authn.Authenticate(req.Context(), tokenValue)
			if err != nil {
				log.Debug().Err(err).Str("path", req.URL.Path).Msg("Request authentication failed")
				return c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorized("invalid or expired token"))
			}

			c.SetRequest(req.WithContext(domain.ContextWithToken(req.Context(), token)))
			return next(c)
		}
	}
}

func tokenFromRequest(req *http.Request) (string, error) {
	if header := req.Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", errInvalidHeader
		}
		return parts[1], nil
	}

	if cookie, err := req.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", ErrNoCredentials
}
