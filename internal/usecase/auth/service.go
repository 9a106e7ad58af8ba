package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "authservice/backend/internal/domain/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// maxBcryptInput is the longest secret bcrypt accepts.
const maxBcryptInput = 72

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users    domain.UserRepository
	tokens   TokenManager
	nowFunc  func() time.Time
	hashCost int
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, tokens TokenManager) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		nowFunc:  time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a new user and returns the persisted entity without a password hash.
func (s *Service) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	username, password, err := normalizeCredentials(creds)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordBytes(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hashed),
		CreatedAt:    s.nowFunc().UTC(),
	}

	// The store still enforces uniqueness for concurrent registrations.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return sanitizeUser(user), nil
}

// Login validates credentials and returns a token plus user.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	username, password, err := normalizeCredentials(creds)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, sanitizeUser(user), nil
}

// ValidateToken checks a bearer token and returns the user id it carries.
func (s *Service) ValidateToken(token string) (string, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, domain.ErrExpiredToken) {
			return "", domain.ErrExpiredToken
		}
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}

// WhoAmI resolves the user behind an authenticated identity.
func (s *Service) WhoAmI(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return sanitizeUser(user), nil
}

func normalizeCredentials(creds domain.Credentials) (string, string, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" {
		return "", "", &domain.MissingFieldError{Field: "username"}
	}
	if creds.Password == "" {
		return "", "", &domain.MissingFieldError{Field: "password"}
	}
	return username, creds.Password, nil
}

// passwordBytes returns the bcrypt input for a password. Passwords over the
// bcrypt limit are reduced to a base64 SHA-256 digest first, so every byte
// still counts and the input stays within 72 bytes.
func passwordBytes(password string) []byte {
	if len(password) <= maxBcryptInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
