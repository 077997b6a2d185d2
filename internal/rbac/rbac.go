// Package rbac evaluates whether a presented role satisfies a required
// role against a fixed hierarchy.  The check is pure and total:
// unknown roles map to an empty allow-set and are always denied.
package rbac

import (
	"errors"

	"github.com/iliyamo/identity-access/internal/utils"
)

// ErrPermissionDenied is returned when the presented role does not
// satisfy the required role. Handlers translate it into HTTP 403.
var ErrPermissionDenied = errors.New("no permission to perform this action")

// hierarchy maps a role to the set of roles it is allowed to act as.
// "admin" implies "user"; "user" implies only itself.
var hierarchy = map[string][]string{
	"admin": {"admin", "user"},
	"user":  {"user"},
}

// Authorize reports whether the presented role's allow-set contains the
// required role.
func Authorize(role, requiredRole string) bool {
	for _, allowed := range hierarchy[role] {
		if allowed == requiredRole {
			return true
		}
	}
	return false
}

// ValidateRole decodes the token and checks that its role claim
// satisfies requiredRole.  It is the single gate every privileged
// operation passes through before touching storage.  Decode failures
// propagate as-is; an insufficient role fails with ErrPermissionDenied.
func ValidateRole(codec *utils.TokenCodec, token, requiredRole string) (*utils.Claims, error) {
	claims, err := codec.Decode(token)
	if err != nil {
		return nil, err
	}
	if !Authorize(claims.UserRole, requiredRole) {
		return nil, ErrPermissionDenied
	}
	return claims, nil
}
