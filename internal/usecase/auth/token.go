package auth

// TokenManager abstracts token issuance and verification.
type TokenManager interface {
	Generate(userID string) (string, error)
	// Validate returns the embedded user id, or ErrInvalidToken / ErrExpiredToken.
	Validate(token string) (string, error)
}
