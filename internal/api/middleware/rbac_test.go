package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

func runRBAC(t *testing.T, session any, allowed ...string) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if session != nil {
		c.Set(SessionKey, session)
	}

	called := false
	handler := RequireRole(allowed...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return called, handler(c)
}

func TestRequireRole_AdminAllowed(t *testing.T) {
	session := domain.UserSession{ID: "user_1", Role: domain.RoleAdmin}
	called, err := runRBAC(t, session, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called for admin")
	}
}

func TestRequireRole_UserForbidden(t *testing.T) {
	session := domain.UserSession{ID: "user_1", Role: domain.RoleUser}
	called, err := runRBAC(t, session, domain.RoleAdmin)
	if called {
		t.Fatalf("next called for non-admin")
	}
	assertHTTPError(t, err, http.StatusForbidden)
}

func TestRequireRole_NoSession(t *testing.T) {
	called, err := runRBAC(t, nil, domain.RoleAdmin)
	if called {
		t.Fatalf("next called without a session")
	}
	assertHTTPError(t, err, http.StatusUnauthorized)
}
