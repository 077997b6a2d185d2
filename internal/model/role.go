package model

// Role represents a row in the `roles` table.  It maps a small
// integer ID to a role name.  Users reference this table via the
// RoleID field.  Permissions holds the permission set loaded via
// an explicit join over the roles_permissions table; it is nil
// when the caller did not request it.
//
// Fields:
//  ID          – numeric identifier of the role.
//  Name        – unique role name (e.g. "user", "admin").
//  Permissions – permissions linked to this role.
type Role struct {
    ID          uint8        // roles.id
    Name        string       // roles.name
    Permissions []Permission // joined via roles_permissions
}

// Permission represents a row in the `permissions` table.  The
// many-to-many link to roles carries no attributes of its own;
// relationship existence is the only state.
//
// Fields:
//  ID   – numeric identifier of the permission.
//  Name – unique permission name (e.g. "owner", "read_only", "all").
type Permission struct {
    ID   uint8  // permissions.id
    Name string // permissions.name
}
