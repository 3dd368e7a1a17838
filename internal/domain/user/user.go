package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user: not found")
	ErrConflict           = errors.New("user: email already registered")
	ErrInvalidCredentials = errors.New("user: invalid email or password")
)

type User struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	PasswordDigest string
	DiscordID      string
	CreatedAt      time.Time
}

func New(id, name, email, phone, digest, discordID string) *User {
	return &User{
		ID:             id,
		Name:           name,
		Email:          email,
		Phone:          phone,
		PasswordDigest: digest,
		DiscordID:      discordID,
		CreatedAt:      time.Now().UTC(),
	}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// PasswordHasher derives and verifies password digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) error
}
