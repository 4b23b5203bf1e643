// Package repo provides user persistence over PostgreSQL.
package repo

import (
	"context"
	"time"
)

// User is an account row. Password holds the bcrypt hash, never the plain text.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRepository is an interface for user storage operations.
type UserRepository interface {
	// FindByID retrieves a single user by its unique identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail retrieves a single user by email.
	// Returns ErrUserNotFound if no user exists with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create adds a new user with the given bcrypt password hash.
	// Returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
}
