package domain

import "errors"

var (
	// ErrEmptyMessage indicates an empty or whitespace-only message
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong indicates the message exceeds the configured maximum
	ErrMessageTooLong = errors.New("message too long")
	// ErrUnauthorized indicates the caller identity domain is not allow-listed
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited indicates rate limit exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
