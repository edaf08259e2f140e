// Package auth handles staff accounts: sign-up, sign-in and the bearer
// tokens that authorize API calls.
//
// Passwords are stored as bcrypt hashes. Tokens are HS256 JWTs carrying the
// user id as subject and the email as a claim; signing out is left to the
// client, which discards its token.
package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registering an email that has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnauthorized is returned for a missing, malformed or expired token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidEmail is returned when the email is empty or malformed.
	ErrInvalidEmail = errors.New("a valid email address is required")

	// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("password should be at least 6 characters")
)

// User is a staff account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
