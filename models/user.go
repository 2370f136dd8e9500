package models

import (
	"time"
)

// User is a registered account of the access gate. Only the salted password
// hash is ever stored.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"password_hash,omitempty"`
	PasswordSalt []byte    `json:"password_salt,omitempty"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Provider     string    `json:"provider"`
	RegisteredAt time.Time `json:"registered_at"`
	LastAccess   time.Time `json:"last_access"`
}

type PublicUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
	LastAccess   time.Time `json:"last_access"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		RegisteredAt: u.RegisteredAt,
		LastAccess:   u.LastAccess,
	}
}

const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// Session is the stored login state. Token is the signed value handed to the
// client; ID is the token's jti and the storage key.
type Session struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	User      PublicUser `json:"user"`
	ExpiresAt time.Time  `json:"expires_at"`
}
