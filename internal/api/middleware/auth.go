package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkwellhq/inkwell/internal/api/metrics"
	"github.com/inkwellhq/inkwell/internal/core/ports"
	"github.com/inkwellhq/inkwell/internal/core/token"
)

// StatusTokenExpired signals an expired access token that the middleware
// could not rescue server-side. Clients key their single refresh-and-retry
// off this code and this code only.
const StatusTokenExpired = 498

// SessionKey is the echo context key the authenticated session is stored under.
const SessionKey = "session"

// RefreshCookieName holds the refresh token used for the server-side
// expired-token rescue.
const RefreshCookieName = "refreshToken"

// AccessCookieName is the cookie the middleware writes a rescued access
// token into.
const AccessCookieName = "token"

// Auth gates a route on a valid bearer access token and injects the
// sanitized session into the request context. An expired token with a
// refresh cookie present is rescued with exactly one refresh attempt; the
// minted access token is handed back in the token cookie.
func Auth(codec *token.Codec, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			session, err := codec.Verify(token.Access, parts[1])
			if err == nil {
				c.Set(SessionKey, session)
				return next(c)
			}

			// Bad signature or malformed: reject outright, no refresh.
			if !errors.Is(err, token.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			cookie, cerr := c.Cookie(RefreshCookieName)
			if cerr != nil || cookie.Value == "" {
				// Expired and no server-side rescue available: tell the
				// client so it can run its own refresh-and-retry.
				return echo.NewHTTPError(StatusTokenExpired, "token expired")
			}

			newAccess, rerr := auth.Refresh(c.Request().Context(), cookie.Value)
			if rerr != nil {
				metrics.TokenRefreshesTotal.WithLabelValues("middleware", "rejected").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "token refresh failed")
			}
			metrics.TokenRefreshesTotal.WithLabelValues("middleware", "success").Inc()

			session, err = codec.Verify(token.Access, newAccess)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.SetCookie(&http.Cookie{
				Name:  AccessCookieName,
				Value: newAccess,
				Path:  "/",
			})
			c.Set(SessionKey, session)
			return next(c)
		}
	}
}
