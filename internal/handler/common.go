package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/identity-access/internal/model"
	"github.com/iliyamo/identity-access/internal/rbac"
	"github.com/iliyamo/identity-access/internal/repository"
	"github.com/iliyamo/identity-access/internal/service"
	"github.com/iliyamo/identity-access/internal/utils"
)

// dbTimeout bounds every request-scoped call into storage and the
// token warehouse.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// bearerToken returns the raw token placed in context by the
// middleware, or an empty string when the route was registered without
// it.
func bearerToken(c echo.Context) string {
	if v, ok := c.Get("token").(string); ok {
		return v
	}
	return ""
}

// writeError maps an error kind from the service stack onto its HTTP
// status. Every fallible operation surfaces one of the known kinds;
// anything unrecognized is a server error.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, utils.ErrExpiredToken),
		errors.Is(err, utils.ErrInvalidToken),
		errors.Is(err, rbac.ErrPermissionDenied),
		errors.Is(err, service.ErrAccountBlocked):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, service.ErrNotVerifiedCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRoleNotFound),
		errors.Is(err, repository.ErrPermissionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateCredentials),
		errors.Is(err, repository.ErrDuplicateRole),
		errors.Is(err, repository.ErrDuplicatePermission):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, utils.ErrWeakPassword),
		errors.Is(err, service.ErrExternal):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// listParams reads the shared pagination query parameters.
func listParams(c echo.Context) repository.ListParams {
	p := repository.ListParams{
		Page:         1,
		Limit:        10,
		OrderBy:      c.QueryParam("order_by"),
		SortBy:       c.QueryParam("sort_by"),
		FilterByRole: c.QueryParam("filter_by_role"),
	}
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		p.Limit = n
	}
	return p
}

// parseRecordID converts the :id route parameter of role/permission
// routes into the small integer ids those tables use.
func parseRecordID(c echo.Context) (uint8, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(n), true
}

// ----- response DTOs -----

type userResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	IsBlocked  bool      `json:"is_blocked"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:         u.ID.String(),
		Name:       u.Name,
		Surname:    u.Surname,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.RoleName,
		IsVerified: u.IsVerified,
		IsBlocked:  u.IsBlocked,
		ImageURL:   u.ImageURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type permissionResponse struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
}

type roleResponse struct {
	ID          uint8                `json:"id"`
	Name        string               `json:"name"`
	Permissions []permissionResponse `json:"permissions"`
}

func toRoleResponse(r model.Role) roleResponse {
	perms := make([]permissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, permissionResponse{ID: p.ID, Name: p.Name})
	}
	return roleResponse{ID: r.ID, Name: r.Name, Permissions: perms}
}
