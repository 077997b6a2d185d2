package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/identity-access/internal/model"
)

// PermissionRepo persists permission records.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

// Create inserts a permission and returns it.
func (r *PermissionRepo) Create(ctx context.Context, name string) (model.Permission, error) {
	_, err := r.DB.ExecContext(ctx, "INSERT INTO permissions (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Permission{}, ErrDuplicatePermission
		}
		return model.Permission{}, err
	}
	return r.GetByName(ctx, name)
}

// GetByID fetches a permission by primary key.
func (r *PermissionRepo) GetByID(ctx context.Context, id uint8) (model.Permission, error) {
	var p model.Permission
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM permissions WHERE id = ? LIMIT 1", id).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Permission{}, ErrPermissionNotFound
		}
		return model.Permission{}, err
	}
	return p, nil
}

// GetByName fetches a permission by its unique name.
func (r *PermissionRepo) GetByName(ctx context.Context, name string) (model.Permission, error) {
	var p model.Permission
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM permissions WHERE name = ? LIMIT 1", name).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Permission{}, ErrPermissionNotFound
		}
		return model.Permission{}, err
	}
	return p, nil
}

// List returns a page of permissions.
func (r *PermissionRepo) List(ctx context.Context, p ListParams) ([]model.Permission, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	col, ok := roleSortColumns[p.SortBy] // same id/name allow-list as roles
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if strings.EqualFold(p.OrderBy, "desc") {
		dir = "DESC"
	}
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT id, name FROM permissions ORDER BY %s %s LIMIT ? OFFSET ?", col, dir),
		p.Limit, (p.Page-1)*p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := []model.Permission{}
	for rows.Next() {
		var perm model.Permission
		if err := rows.Scan(&perm.ID, &perm.Name); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// Update renames a permission and returns the stored record.
func (r *PermissionRepo) Update(ctx context.Context, id uint8, name string) (model.Permission, error) {
	_, err := r.DB.ExecContext(ctx, "UPDATE permissions SET name = ? WHERE id = ?", name, id)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Permission{}, ErrDuplicatePermission
		}
		return model.Permission{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a permission. It returns false when no row matched.
func (r *PermissionRepo) Delete(ctx context.Context, id uint8) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM permissions WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
