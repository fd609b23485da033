package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
)

// activatePage is the server-rendered result of an activation link. On
// success it redirects to the login page after 3 seconds.
var activatePage = template.Must(template.New("activate").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Account activation</title>
  {{if .Success}}<meta http-equiv="refresh" content="3;url=/login">{{end}}
</head>
<body>
  <h1>{{if .Success}}Account activated{{else}}Activation failed{{end}}</h1>
  <p>{{.Message}}</p>
  {{if .Success}}<p>Redirecting to the login page&hellip;</p>{{end}}
</body>
</html>
`))

type activatePageData struct {
	Success bool
	Message string
}

type ActivateHandler struct {
	authService ports.AuthService
}

func NewActivateHandler(authService ports.AuthService) *ActivateHandler {
	return &ActivateHandler{authService: authService}
}

// Activate handles GET /activate?token=... and renders the outcome as HTML.
// Errors render a page rather than the JSON error envelope: the link is
// opened from an email client, not by an API consumer.
func (h *ActivateHandler) Activate(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		return h.render(c, activatePageData{Success: false, Message: "Invalid activation link."})
	}

	err := h.authService.Activate(c.Request().Context(), raw)
	switch {
	case err == nil:
		return h.render(c, activatePageData{Success: true, Message: "Your account is now active."})
	case errors.Is(err, domain.ErrAlreadyActivated):
		return h.render(c, activatePageData{Success: false, Message: "This account has already been activated."})
	default:
		return h.render(c, activatePageData{Success: false, Message: "This activation link is expired or invalid."})
	}
}

func (h *ActivateHandler) render(c echo.Context, data activatePageData) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return activatePage.Execute(c.Response(), data)
}
