package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/identity-access/internal/rbac"
	"github.com/iliyamo/identity-access/internal/repository"
	"github.com/iliyamo/identity-access/internal/utils"
)

func newTestRoleService(t *testing.T) (*RoleService, *PermissionService, string, string) {
	t.Helper()
	codec := utils.NewTokenCodec("test-secret", 15*time.Minute, 24*time.Hour, 30*time.Minute)
	perms := newFakePermissionStore()
	roles := newFakeRoleStore(perms)
	roleSvc := NewRoleService(roles, perms, codec)
	permSvc := NewPermissionService(perms, codec)

	adminToken, err := codec.IssueAccess("admin-1", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userToken, err := codec.IssueAccess("user-1", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return roleSvc, permSvc, adminToken, userToken
}

func TestRoleCRUD(t *testing.T) {
	svc, _, admin, _ := newTestRoleService(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, admin, "moderator")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if role.Name != "moderator" {
		t.Fatalf("unexpected role %+v", role)
	}

	if _, err := svc.CreateRole(ctx, admin, "moderator"); !errors.Is(err, repository.ErrDuplicateRole) {
		t.Fatalf("expected ErrDuplicateRole, got %v", err)
	}

	got, err := svc.GetRole(ctx, admin, "moderator")
	if err != nil || got.ID != role.ID {
		t.Fatalf("get by name failed: %v %+v", err, got)
	}
	if _, err := svc.GetRole(ctx, admin, "nobody"); !errors.Is(err, repository.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	renamed, err := svc.UpdateRoleByID(ctx, admin, role.ID, "editor")
	if err != nil || renamed.Name != "editor" {
		t.Fatalf("update failed: %v %+v", err, renamed)
	}

	roles, err := svc.ListRoles(ctx, admin, repository.ListParams{})
	if err != nil || len(roles) != 1 {
		t.Fatalf("list failed: %v, %d roles", err, len(roles))
	}

	if err := svc.DeleteRoleByID(ctx, admin, role.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteRoleByID(ctx, admin, role.ID); !errors.Is(err, repository.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound on second delete, got %v", err)
	}
}

func TestRoleOperationsRequireAdmin(t *testing.T) {
	svc, _, _, user := newTestRoleService(t)
	ctx := context.Background()

	if _, err := svc.CreateRole(ctx, user, "moderator"); !errors.Is(err, rbac.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := svc.ListRoles(ctx, user, repository.ListParams{}); !errors.Is(err, rbac.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := svc.ListRoles(ctx, "garbage", repository.ListParams{}); !errors.Is(err, utils.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRolePermissionLinks(t *testing.T) {
	roleSvc, permSvc, admin, _ := newTestRoleService(t)
	ctx := context.Background()

	if _, err := roleSvc.CreateRole(ctx, admin, "moderator"); err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if _, err := permSvc.CreatePermission(ctx, admin, "read_only"); err != nil {
		t.Fatalf("create permission failed: %v", err)
	}

	role, err := roleSvc.AddPermissionToRole(ctx, admin, "moderator", "read_only")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(role.Permissions) != 1 || role.Permissions[0].Name != "read_only" {
		t.Fatalf("expected linked permission, got %+v", role.Permissions)
	}

	// Linking again is a duplicate.
	if _, err := roleSvc.AddPermissionToRole(ctx, admin, "moderator", "read_only"); !errors.Is(err, repository.ErrDuplicatePermission) {
		t.Fatalf("expected ErrDuplicatePermission, got %v", err)
	}

	role, err = roleSvc.RemovePermissionFromRole(ctx, admin, "moderator", "read_only")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(role.Permissions) != 0 {
		t.Fatalf("expected empty permission set, got %+v", role.Permissions)
	}

	// Removing an absent link fails; re-adding after removal succeeds.
	if _, err := roleSvc.RemovePermissionFromRole(ctx, admin, "moderator", "read_only"); !errors.Is(err, repository.ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
	if _, err := roleSvc.AddPermissionToRole(ctx, admin, "moderator", "read_only"); err != nil {
		t.Fatalf("re-add failed: %v", err)
	}

	// Unknown role or permission names surface their own sentinels.
	if _, err := roleSvc.AddPermissionToRole(ctx, admin, "ghost", "read_only"); !errors.Is(err, repository.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if _, err := roleSvc.AddPermissionToRole(ctx, admin, "moderator", "ghost"); !errors.Is(err, repository.ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
}

func TestPermissionCRUD(t *testing.T) {
	_, svc, admin, user := newTestRoleService(t)
	ctx := context.Background()

	perm, err := svc.CreatePermission(ctx, admin, "owner")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.CreatePermission(ctx, admin, "owner"); !errors.Is(err, repository.ErrDuplicatePermission) {
		t.Fatalf("expected ErrDuplicatePermission, got %v", err)
	}
	if _, err := svc.CreatePermission(ctx, user, "all"); !errors.Is(err, rbac.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	got, err := svc.GetPermission(ctx, admin, "owner")
	if err != nil || got.ID != perm.ID {
		t.Fatalf("get by name failed: %v %+v", err, got)
	}

	renamed, err := svc.UpdatePermissionByID(ctx, admin, perm.ID, "owner_rw")
	if err != nil || renamed.Name != "owner_rw" {
		t.Fatalf("update failed: %v %+v", err, renamed)
	}

	perms, err := svc.ListPermissions(ctx, admin, repository.ListParams{})
	if err != nil || len(perms) != 1 {
		t.Fatalf("list failed: %v, %d permissions", err, len(perms))
	}

	if err := svc.DeletePermissionByID(ctx, admin, perm.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeletePermissionByID(ctx, admin, perm.ID); !errors.Is(err, repository.ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound on second delete, got %v", err)
	}
}
