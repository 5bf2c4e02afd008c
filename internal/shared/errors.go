package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid indicates an unknown, expired or revoked bearer token.
	ErrTokenInvalid = errors.New("invalid token")
)
