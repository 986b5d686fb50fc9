// Package common defines shared constants and sentinel errors used across
// the chatgate server, its transports and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Login errors.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token verification errors. All of them surface as unauthorized, but
	// stay distinct for diagnosability.
	ErrMissingCredential     = errors.New("missing credential")
	ErrInvalidScheme         = errors.New("invalid token scheme")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidPayload        = errors.New("invalid token payload")

	// Request validation errors.
	ErrInvalidQuery = errors.New("invalid query")

	// Upstream collaborator errors.
	ErrUpstreamEmbedding = errors.New("embedding provider failure")
	ErrUpstreamIndex     = errors.New("vector index failure")

	// Health errors.
	ErrHealthCheck = errors.New("vector index unreachable")

	// Generic errors.
	ErrorNotFound = errors.New("not found")
	ErrorInternal = errors.New("internal error")
)
