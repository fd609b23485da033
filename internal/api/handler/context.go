package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwellhq/inkwell/internal/api/middleware"
	"github.com/inkwellhq/inkwell/internal/core/domain"
)

// ctxSession extracts the session injected by the Auth middleware and
// fast-fails before any service call: a present session with a non-empty ID
// proves the middleware ran.
func ctxSession(c echo.Context) (domain.UserSession, error) {
	session, ok := c.Get(middleware.SessionKey).(domain.UserSession)
	if !ok || session.ID == "" {
		return domain.UserSession{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return session, nil
}
