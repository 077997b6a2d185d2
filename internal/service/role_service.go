package service

import (
	"context"

	"github.com/iliyamo/identity-access/internal/model"
	"github.com/iliyamo/identity-access/internal/rbac"
	"github.com/iliyamo/identity-access/internal/repository"
	"github.com/iliyamo/identity-access/internal/utils"
)

// RoleStore is the role persistence contract.
type RoleStore interface {
	Create(ctx context.Context, name string) (model.Role, error)
	GetByID(ctx context.Context, id uint8) (model.Role, error)
	GetByName(ctx context.Context, name string) (model.Role, error)
	List(ctx context.Context, p repository.ListParams) ([]model.Role, error)
	Update(ctx context.Context, id uint8, name string) (model.Role, error)
	Delete(ctx context.Context, id uint8) (bool, error)
	AddPermission(ctx context.Context, roleID, permissionID uint8) error
	RemovePermission(ctx context.Context, roleID, permissionID uint8) error
}

// PermissionStore is the permission persistence contract.
type PermissionStore interface {
	Create(ctx context.Context, name string) (model.Permission, error)
	GetByID(ctx context.Context, id uint8) (model.Permission, error)
	GetByName(ctx context.Context, name string) (model.Permission, error)
	List(ctx context.Context, p repository.ListParams) ([]model.Permission, error)
	Update(ctx context.Context, id uint8, name string) (model.Permission, error)
	Delete(ctx context.Context, id uint8) (bool, error)
}

// RoleService manages roles and their permission links. Every
// operation is admin-scoped and passes the RBAC gate before touching
// storage.
type RoleService struct {
	roles       RoleStore
	permissions PermissionStore
	codec       *utils.TokenCodec
}

func NewRoleService(roles RoleStore, permissions PermissionStore, codec *utils.TokenCodec) *RoleService {
	return &RoleService{roles: roles, permissions: permissions, codec: codec}
}

func (s *RoleService) CreateRole(ctx context.Context, token, name string) (model.Role, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Role{}, err
	}
	return s.roles.Create(ctx, name)
}

func (s *RoleService) GetRole(ctx context.Context, token, name string) (model.Role, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Role{}, err
	}
	return s.roles.GetByName(ctx, name)
}

func (s *RoleService) GetRoleByID(ctx context.Context, token string, id uint8) (model.Role, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Role{}, err
	}
	return s.roles.GetByID(ctx, id)
}

func (s *RoleService) ListRoles(ctx context.Context, token string, p repository.ListParams) ([]model.Role, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return nil, err
	}
	return s.roles.List(ctx, p)
}

func (s *RoleService) UpdateRoleByID(ctx context.Context, token string, id uint8, name string) (model.Role, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Role{}, err
	}
	return s.roles.Update(ctx, id, name)
}

func (s *RoleService) DeleteRoleByID(ctx context.Context, token string, id uint8) error {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return err
	}
	ok, err := s.roles.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrRoleNotFound
	}
	return nil
}

// AddPermissionToRole links an existing permission to an existing
// role. Linking a permission the role already has fails with
// ErrDuplicatePermission.
func (s *RoleService) AddPermissionToRole(ctx context.Context, token, roleName, permissionName string) (model.Role, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Role{}, err
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return model.Role{}, err
	}
	perm, err := s.permissions.GetByName(ctx, permissionName)
	if err != nil {
		return model.Role{}, err
	}
	if err := s.roles.AddPermission(ctx, role.ID, perm.ID); err != nil {
		return model.Role{}, err
	}
	return s.roles.GetByName(ctx, roleName)
}

// RemovePermissionFromRole unlinks a permission from a role. Removing
// a link that does not exist fails with ErrPermissionNotFound.
func (s *RoleService) RemovePermissionFromRole(ctx context.Context, token, roleName, permissionName string) (model.Role, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Role{}, err
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return model.Role{}, err
	}
	perm, err := s.permissions.GetByName(ctx, permissionName)
	if err != nil {
		return model.Role{}, err
	}
	if err := s.roles.RemovePermission(ctx, role.ID, perm.ID); err != nil {
		return model.Role{}, err
	}
	return s.roles.GetByName(ctx, roleName)
}
