package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/identity-access/internal/service"
)

// RoleHandler serves the admin role management surface.
type RoleHandler struct {
	Roles *service.RoleService
}

func NewRoleHandler(roles *service.RoleService) *RoleHandler {
	return &RoleHandler{Roles: roles}
}

type nameReq struct {
	Name string `json:"name"`
}

// Create adds a role.
func (h *RoleHandler) Create(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	role, err := h.Roles.CreateRole(ctx, bearerToken(c), strings.TrimSpace(req.Name))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toRoleResponse(role))
}

// List returns a page of roles with their permissions. The optional
// ?name= query looks a single role up by name instead.
func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if name := strings.TrimSpace(c.QueryParam("name")); name != "" {
		role, err := h.Roles.GetRole(ctx, bearerToken(c), name)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, toRoleResponse(role))
	}

	roles, err := h.Roles.ListRoles(ctx, bearerToken(c), listParams(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns a single role.
func (h *RoleHandler) GetByID(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	role, err := h.Roles.GetRoleByID(ctx, bearerToken(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// UpdateByID renames a role.
func (h *RoleHandler) UpdateByID(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role id"})
	}
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	role, err := h.Roles.UpdateRoleByID(ctx, bearerToken(c), id, strings.TrimSpace(req.Name))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// DeleteByID removes a role.
func (h *RoleHandler) DeleteByID(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Roles.DeleteRoleByID(ctx, bearerToken(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Role deleted successfully."})
}

// AddPermission links a permission to a role by name.
func (h *RoleHandler) AddPermission(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	role, err := h.Roles.AddPermissionToRole(ctx, bearerToken(c), c.Param("name"), c.Param("permission"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// RemovePermission unlinks a permission from a role by name.
func (h *RoleHandler) RemovePermission(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	role, err := h.Roles.RemovePermissionFromRole(ctx, bearerToken(c), c.Param("name"), c.Param("permission"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}
