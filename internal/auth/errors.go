package auth

import "errors"

var (
	// ErrNoCredentials is returned when a request carries neither a session cookie nor a bearer token.
	ErrNoCredentials = errors.New("no session credentials")

	// ErrInvalidToken is returned for malformed, tampered or expired tokens.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrSessionNotFound is returned when a well-formed token has no live server-side session.
	ErrSessionNotFound = errors.New("session not found")
)
