package auth

import "errors"

// Errors returned by JWTService. The HTTP layer maps each of them to 401.
var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned once the exp claim has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned while the nbf claim lies in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned for an empty token string.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrMissingSubject is returned when a token is requested for an empty subject.
	ErrMissingSubject = errors.New("token subject is required")
)
