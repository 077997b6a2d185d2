package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema creates the identity tables when they do not exist yet.
// Unique constraints on username/email and the composite primary key
// on roles_permissions are what the repositories rely on for duplicate
// detection.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id   TINYINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(32) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id   TINYINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(32) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS roles_permissions (
		role_id       TINYINT UNSIGNED NOT NULL,
		permission_id TINYINT UNSIGNED NOT NULL,
		PRIMARY KEY (role_id, permission_id),
		FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE,
		FOREIGN KEY (permission_id) REFERENCES permissions(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36) NOT NULL PRIMARY KEY,
		name          VARCHAR(15) NOT NULL,
		surname       VARCHAR(15) NOT NULL,
		username      VARCHAR(15) NOT NULL UNIQUE,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(80) NOT NULL,
		role_id       TINYINT UNSIGNED NOT NULL DEFAULT 1,
		is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		is_blocked    BOOLEAN NOT NULL DEFAULT FALSE,
		image_url     VARCHAR(128) NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (role_id) REFERENCES roles(id)
	)`,
}

// EnsureSchema creates the tables and seeds the fixed default roles
// and permissions: roles "user" (id 1) and "admin" (id 2), permissions
// "owner", "read_only" and "all". The admin role is linked to "all",
// the user role to "owner" and "read_only". All statements are
// idempotent so bootstrap can run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	seed := []string{
		`INSERT IGNORE INTO roles (id, name) VALUES (1, 'user'), (2, 'admin')`,
		`INSERT IGNORE INTO permissions (name) VALUES ('owner'), ('read_only'), ('all')`,
		`INSERT IGNORE INTO roles_permissions (role_id, permission_id)
		 SELECT r.id, p.id FROM roles r JOIN permissions p
		 WHERE (r.name = 'admin' AND p.name = 'all')
		    OR (r.name = 'user' AND p.name IN ('owner', 'read_only'))`,
	}
	for _, stmt := range seed {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}
