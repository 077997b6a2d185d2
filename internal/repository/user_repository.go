package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/identity-access/internal/model"
)

// UserRepo persists user records in the 'users' table. Role names are
// loaded with an explicit join; no lazy relationship traversal.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `u.id, u.name, u.surname, u.username, u.email, u.password_hash,
	u.role_id, r.name, u.is_verified, u.is_blocked, u.image_url, u.created_at, u.updated_at`

// UserUpdate describes a partial update of a user row. Nil fields are
// left untouched. PasswordHash must already be hashed by the caller.
type UserUpdate struct {
	Name         *string
	Surname      *string
	Username     *string
	Email        *string
	ImageURL     *string
	PasswordHash *string
	RoleID       *uint8
	IsVerified   *bool
	IsBlocked    *bool
}

// ListParams controls pagination and ordering of user listings.
// SortBy is checked against a fixed allow-list of column names; any
// other value falls back to created_at. This replaces arbitrary
// attribute access from user input with an explicit enum.
type ListParams struct {
	Page         int
	Limit        int
	OrderBy      string // "asc" or "desc"
	SortBy       string
	FilterByRole string
}

var userSortColumns = map[string]string{
	"name":       "u.name",
	"surname":    "u.surname",
	"username":   "u.username",
	"email":      "u.email",
	"created_at": "u.created_at",
}

// Create inserts a user row and returns the stored record.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	var imageURL interface{}
	if u.ImageURL != "" {
		imageURL = u.ImageURL
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, surname, username, email, password_hash, role_id, is_verified, is_blocked, image_url)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		u.ID.String(), u.Name, u.Surname, u.Username, strings.ToLower(strings.TrimSpace(u.Email)),
		u.PasswordHash, u.RoleID, u.IsVerified, u.IsBlocked, imageURL)
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrDuplicateCredentials
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, u.ID)
}

// GetByLogin fetches a user whose username or email matches the given
// login identifier. Email comparison uses the normalized lower-case form.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u JOIN roles r ON r.id = u.role_id
		 WHERE u.username = ? OR u.email = ? LIMIT 1`,
		strings.TrimSpace(login), strings.ToLower(strings.TrimSpace(login)))
	return scanUser(row)
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u JOIN roles r ON r.id = u.role_id
		 WHERE u.id = ? LIMIT 1`, id.String())
	return scanUser(row)
}

// List returns a page of users ordered by an allow-listed column,
// optionally filtered by role name.
func (r *UserRepo) List(ctx context.Context, p ListParams) ([]model.User, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	col, ok := userSortColumns[p.SortBy]
	if !ok {
		col = "u.created_at"
	}
	dir := "ASC"
	if strings.EqualFold(p.OrderBy, "desc") {
		dir = "DESC"
	}

	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id`
	args := []interface{}{}
	if p.FilterByRole != "" {
		query += ` WHERE r.name = ?`
		args = append(args, p.FilterByRole)
	}
	query += fmt.Sprintf(` ORDER BY %s %s LIMIT ? OFFSET ?`, col, dir)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies a partial update and returns the stored record.
// An empty update is a no-op read.
func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (model.User, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Surname != nil {
		add("surname", *upd.Surname)
	}
	if upd.Username != nil {
		add("username", *upd.Username)
	}
	if upd.Email != nil {
		add("email", strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if upd.RoleID != nil {
		add("role_id", *upd.RoleID)
	}
	if upd.IsVerified != nil {
		add("is_verified", *upd.IsVerified)
	}
	if upd.IsBlocked != nil {
		add("is_blocked", *upd.IsBlocked)
	}
	if len(sets) > 0 {
		args = append(args, id.String())
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			if isDuplicateKey(err) {
				return model.User{}, ErrDuplicateCredentials
			}
			return model.User{}, err
		}
	}
	// The read distinguishes "unchanged" from "absent".
	return r.GetByID(ctx, id)
}

// Delete removes a user row. It returns false when no row matched.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u     model.User
		id    string
		image sql.NullString
	)
	err := row.Scan(&id, &u.Name, &u.Surname, &u.Username, &u.Email, &u.PasswordHash,
		&u.RoleID, &u.RoleName, &u.IsVerified, &u.IsBlocked, &image, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.User{}, err
	}
	u.ID = parsed
	u.ImageURL = image.String
	return u, nil
}
