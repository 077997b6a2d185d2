// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without leaking raw driver errors. Unique-constraint
// violations surface as the specific Duplicate* kind and lookup
// misses as the specific *NotFound kind.
package repository

import (
	"errors"
	"strings"
)

// ErrUserNotFound is returned when no user matches the given login
// identifier or id. Handlers translate this into HTTP 404.
var ErrUserNotFound = errors.New("user not found")

// ErrRoleNotFound is returned when a role lookup misses.
var ErrRoleNotFound = errors.New("role not found")

// ErrPermissionNotFound is returned when a permission lookup misses or
// a role/permission link to remove does not exist.
var ErrPermissionNotFound = errors.New("permission not found")

// ErrDuplicateCredentials is returned when creating or updating a user
// violates the username or email unique constraint. Handlers translate
// this into HTTP 409.
var ErrDuplicateCredentials = errors.New("user with this username/email already exists")

// ErrDuplicateRole is returned when a role name already exists.
var ErrDuplicateRole = errors.New("role already exists")

// ErrDuplicatePermission is returned when a permission name already
// exists, or when linking a permission to a role that already has it.
var ErrDuplicatePermission = errors.New("permission already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062 on unique constraint violation).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "1062")
}
