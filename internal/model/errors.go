package model

import "errors"

var (
	// Auth related errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnauthorized       = errors.New("unauthorized")

	// Store related errors
	ErrCredentialNotFound = errors.New("credential not found")
	ErrProfileNotFound    = errors.New("profile not found")

	// Storage related errors. Never surfaced to callers directly; the
	// service layer folds them into the generic auth failure.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
