package auth

import "context"

// UserRepository defines persistence operations for auth users.
type UserRepository interface {
	// Create inserts the user, returning ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
