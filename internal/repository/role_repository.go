package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/identity-access/internal/model"
)

// RoleRepo persists roles and the roles_permissions join table.
// Permission sets are loaded via explicit joined queries to keep
// loading behavior predictable.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

var roleSortColumns = map[string]string{
	"id":   "id",
	"name": "name",
}

// Create inserts a role and returns it.
func (r *RoleRepo) Create(ctx context.Context, name string) (model.Role, error) {
	_, err := r.DB.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Role{}, ErrDuplicateRole
		}
		return model.Role{}, err
	}
	return r.GetByName(ctx, name)
}

// GetByID fetches a role with its permissions.
func (r *RoleRepo) GetByID(ctx context.Context, id uint8) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE id = ? LIMIT 1", id).Scan(&role.ID, &role.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Role{}, ErrRoleNotFound
		}
		return model.Role{}, err
	}
	return r.withPermissions(ctx, role)
}

// GetByName fetches a role with its permissions.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE name = ? LIMIT 1", name).Scan(&role.ID, &role.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Role{}, ErrRoleNotFound
		}
		return model.Role{}, err
	}
	return r.withPermissions(ctx, role)
}

// List returns a page of roles, permissions included.
func (r *RoleRepo) List(ctx context.Context, p ListParams) ([]model.Role, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	col, ok := roleSortColumns[p.SortBy]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if strings.EqualFold(p.OrderBy, "desc") {
		dir = "DESC"
	}
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT id, name FROM roles ORDER BY %s %s LIMIT ? OFFSET ?", col, dir),
		p.Limit, (p.Page-1)*p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		loaded, err := r.withPermissions(ctx, roles[i])
		if err != nil {
			return nil, err
		}
		roles[i] = loaded
	}
	return roles, nil
}

// Update renames a role and returns the stored record.
func (r *RoleRepo) Update(ctx context.Context, id uint8, name string) (model.Role, error) {
	_, err := r.DB.ExecContext(ctx, "UPDATE roles SET name = ? WHERE id = ?", name, id)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Role{}, ErrDuplicateRole
		}
		return model.Role{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a role. It returns false when no row matched.
func (r *RoleRepo) Delete(ctx context.Context, id uint8) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM roles WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddPermission links a permission to a role. Linking an already
// linked pair fails with ErrDuplicatePermission (the join table's
// composite primary key enforces set semantics).
func (r *RoleRepo) AddPermission(ctx context.Context, roleID, permissionID uint8) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles_permissions (role_id, permission_id) VALUES (?,?)",
		roleID, permissionID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicatePermission
		}
		return err
	}
	return nil
}

// RemovePermission unlinks a permission from a role. Removing an
// absent link fails with ErrPermissionNotFound.
func (r *RoleRepo) RemovePermission(ctx context.Context, roleID, permissionID uint8) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM roles_permissions WHERE role_id = ? AND permission_id = ?",
		roleID, permissionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPermissionNotFound
	}
	return nil
}

func (r *RoleRepo) withPermissions(ctx context.Context, role model.Role) (model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.name FROM permissions p
		 JOIN roles_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ? ORDER BY p.id`, role.ID)
	if err != nil {
		return model.Role{}, err
	}
	defer rows.Close()

	role.Permissions = []model.Permission{}
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return model.Role{}, err
		}
		role.Permissions = append(role.Permissions, p)
	}
	return role, rows.Err()
}
