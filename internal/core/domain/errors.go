package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing.
	// Embedding adapters wrap it when the provider rejects the credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrEmptyCorpus indicates the quote table produced no documents
	ErrEmptyCorpus = errors.New("no usable text found")

	// ErrEmbeddingMismatch indicates the provider returned a different number
	// of vectors than texts sent
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")

	// ErrJobNotFailed indicates a reset was requested outside the failed state
	ErrJobNotFailed = errors.New("embedding job is not in failed state")

	// ErrJobLocked indicates another instance holds the embedding job lock
	ErrJobLocked = errors.New("embedding job already running on another instance")

	// ErrSchemaMismatch indicates a table does not carry the configured columns
	ErrSchemaMismatch = errors.New("table schema mismatch")
)
