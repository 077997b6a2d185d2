package service

import (
	"context"

	"github.com/iliyamo/identity-access/internal/model"
	"github.com/iliyamo/identity-access/internal/rbac"
	"github.com/iliyamo/identity-access/internal/repository"
	"github.com/iliyamo/identity-access/internal/utils"
)

// PermissionService manages permission records. Admin-scoped like the
// role surface.
type PermissionService struct {
	permissions PermissionStore
	codec       *utils.TokenCodec
}

func NewPermissionService(permissions PermissionStore, codec *utils.TokenCodec) *PermissionService {
	return &PermissionService{permissions: permissions, codec: codec}
}

func (s *PermissionService) CreatePermission(ctx context.Context, token, name string) (model.Permission, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Permission{}, err
	}
	return s.permissions.Create(ctx, name)
}

func (s *PermissionService) GetPermission(ctx context.Context, token, name string) (model.Permission, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Permission{}, err
	}
	return s.permissions.GetByName(ctx, name)
}

func (s *PermissionService) GetPermissionByID(ctx context.Context, token string, id uint8) (model.Permission, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Permission{}, err
	}
	return s.permissions.GetByID(ctx, id)
}

func (s *PermissionService) ListPermissions(ctx context.Context, token string, p repository.ListParams) ([]model.Permission, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return nil, err
	}
	return s.permissions.List(ctx, p)
}

func (s *PermissionService) UpdatePermissionByID(ctx context.Context, token string, id uint8, name string) (model.Permission, error) {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return model.Permission{}, err
	}
	return s.permissions.Update(ctx, id, name)
}

func (s *PermissionService) DeletePermissionByID(ctx context.Context, token string, id uint8) error {
	if _, err := rbac.ValidateRole(s.codec, token, "admin"); err != nil {
		return err
	}
	ok, err := s.permissions.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrPermissionNotFound
	}
	return nil
}
