package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type userRow struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`
}

func toUserRow(u *domain.User) userRow {
	return userRow{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Surname: u.Surname,
		Role:    u.Role,
		Enabled: u.Enabled,
	}
}

type updateAccessRequest struct {
	UserID string `json:"userId" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING ACTIVE SUSPENDED"`
	Role   string `json:"role"   validate:"omitempty,oneof=USER ADMIN"`
}

type languageRequest struct {
	Language string `json:"language" validate:"required"`
}

// ListUsers returns the admin console user table.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userRow
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, toUserRow(u))
	}
	return c.JSON(http.StatusOK, rows)
}

// UpdateAccess changes an account's status and/or role.
//
// @Summary      Update an account's status or role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAccessRequest  true  "Fields to update"
// @Success      200   {object}  userRow
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/admin/users [patch]
func (h *UserHandler) UpdateAccess(c echo.Context) error {
	var req updateAccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var update ports.AccessUpdate
	if req.Status != "" {
		update.Status = &req.Status
	}
	if req.Role != "" {
		update.Role = &req.Role
	}

	user, err := h.userService.UpdateAccess(c.Request().Context(), req.UserID, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserRow(user))
}

// SetLanguage stores the caller's UI language preference.
//
// @Summary      Set the caller's language
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      languageRequest  true  "Language code (EN, ZH, JA)"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/users/language [patch]
func (h *UserHandler) SetLanguage(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req languageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.SetLanguage(c.Request().Context(), session.ID, req.Language); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Success: true})
}
