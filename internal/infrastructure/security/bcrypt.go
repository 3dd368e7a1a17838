package security

import (
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher derives salted password digests.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("security: hash password: %w", err)
	}
	return string(digest), nil
}

// Verify maps any mismatch to user.ErrInvalidCredentials.
func (h *BcryptHasher) Verify(digest, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrHashTooShort):
		return user.ErrInvalidCredentials
	default:
		return fmt.Errorf("security: verify password: %w", err)
	}
}
