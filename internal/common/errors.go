// Package common defines shared constants and sentinel errors used across
// agencyhub components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Credential and session errors.
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")

	// Token lifecycle errors (invalid or malformed token, natural expiry).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Reset ticket errors. A single sentinel covers "never existed",
	// "already used" and "expired": the distinction must not leak.
	ErrInvalidOrExpired = errors.New("invalid or expired reset token")
)
