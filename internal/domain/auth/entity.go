package auth

import (
	"errors"
	"time"
)

var (
	// ErrMissingField indicates a required credential field was empty.
	ErrMissingField = errors.New("required field missing")
	// ErrUsernameTaken signals a duplicate username registration.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrInvalidCredentials indicates a login failure. Unknown users and wrong
	// passwords both map to it.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken means a supplied token is malformed or its signature does not verify.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken means a supplied token is past its expiry.
	ErrExpiredToken = errors.New("token has expired")
	// ErrNotFound indicates a missing user.
	ErrNotFound = errors.New("user not found")
)

// MissingFieldError names the credential field that was left empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return e.Field + " is required"
}

// Is reports ErrMissingField as a match so callers can use errors.Is.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// User models the authentication entity persisted in storage.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials captures raw credential input for register and login.
type Credentials struct {
	Username string
	Password string
}
