package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/identity-access/internal/service"
)

// PermissionHandler serves the admin permission management surface.
type PermissionHandler struct {
	Permissions *service.PermissionService
}

func NewPermissionHandler(permissions *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{Permissions: permissions}
}

// Create adds a permission.
func (h *PermissionHandler) Create(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	perm, err := h.Permissions.CreatePermission(ctx, bearerToken(c), strings.TrimSpace(req.Name))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, permissionResponse{ID: perm.ID, Name: perm.Name})
}

// List returns a page of permissions, or a single one via ?name=.
func (h *PermissionHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if name := strings.TrimSpace(c.QueryParam("name")); name != "" {
		perm, err := h.Permissions.GetPermission(ctx, bearerToken(c), name)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, permissionResponse{ID: perm.ID, Name: perm.Name})
	}

	perms, err := h.Permissions.ListPermissions(ctx, bearerToken(c), listParams(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionResponse{ID: p.ID, Name: p.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns a single permission.
func (h *PermissionHandler) GetByID(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	perm, err := h.Permissions.GetPermissionByID(ctx, bearerToken(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, permissionResponse{ID: perm.ID, Name: perm.Name})
}

// UpdateByID renames a permission.
func (h *PermissionHandler) UpdateByID(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission id"})
	}
	var req nameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	perm, err := h.Permissions.UpdatePermissionByID(ctx, bearerToken(c), id, strings.TrimSpace(req.Name))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, permissionResponse{ID: perm.ID, Name: perm.Name})
}

// DeleteByID removes a permission.
func (h *PermissionHandler) DeleteByID(c echo.Context) error {
	id, ok := parseRecordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Permissions.DeletePermissionByID(ctx, bearerToken(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Permission deleted successfully."})
}
