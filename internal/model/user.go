package model

import (
    "time"

    "github.com/google/uuid"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user (UUID stored as CHAR(36)).
//  Name         – given name.
//  Surname      – family name.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password; plaintext is never stored.
//  RoleID       – foreign key into the roles table (defaults to the "user" role).
//  RoleName     – role name joined from the roles table on read.
//  IsVerified   – whether the account confirmed its registration email.
//  IsBlocked    – whether an admin blocked the account.
//  ImageURL     – optional profile image reference (empty when unset).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uuid.UUID // users.id
    Name         string    // users.name
    Surname      string    // users.surname
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    RoleID       uint8     // users.role_id (references roles.id)
    RoleName     string    // roles.name (joined)
    IsVerified   bool      // users.is_verified
    IsBlocked    bool      // users.is_blocked
    ImageURL     string    // users.image_url (nullable)
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
