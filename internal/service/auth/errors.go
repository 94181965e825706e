package auth

import "errors"

// Token and credential errors. The HTTP layer reports all token errors as
// one 401 so they only matter for logs and tests.
var (
	ErrInvalidToken = errors.New("invalid authentication token")
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is wrapped together with ErrInvalidToken when iat
	// lies beyond the allowed clock skew.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")

	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
