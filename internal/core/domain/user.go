package domain

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)

// Supported UI language codes, stored per account.
const (
	LanguageEN = "EN"
	LanguageZH = "ZH"
	LanguageJA = "JA"
)

// ValidLanguage reports whether lang is a supported language code.
func ValidLanguage(lang string) bool {
	switch lang {
	case LanguageEN, LanguageZH, LanguageJA:
		return true
	}
	return false
}

// ValidRole reports whether role is an assignable account role.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// ValidStatus reports whether status is an assignable account status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusActive, StatusSuspended:
		return true
	}
	return false
}

// User is a persisted account. The three token fields are single-slot:
// issuing a new token of a given purpose overwrites the previous one, and
// that overwrite is the only revocation mechanism: last login wins.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Name            string    `json:"name"`
	Surname         string    `json:"surname"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	Enabled         bool      `json:"enabled"`
	RefreshToken    string    `json:"-"`
	TwoFactorToken  string    `json:"-"`
	ActivationToken string    `json:"-"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserSession is the sanitized identity derived from a User. It is the only
// shape that travels inside a token or out to clients: no password hash, no
// stored tokens.
type UserSession struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Role    string `json:"role"`
}

// Session strips a User down to its UserSession.
func (u *User) Session() UserSession {
	return UserSession{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Surname: u.Surname,
		Role:    u.Role,
	}
}

// TokenSet is what a successful login hands back to the client. The
// two-factor token travels out of band (email), never in this payload.
type TokenSet struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	Session      UserSession `json:"session"`
}
