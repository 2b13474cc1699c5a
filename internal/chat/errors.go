package chat

import "errors"

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFoundOrUnauthorized collapses "no such chat" and "not yours"
	// into one outcome so the API never leaks which case applied.
	ErrNotFoundOrUnauthorized = errors.New("chat not found or not authorized")
)
