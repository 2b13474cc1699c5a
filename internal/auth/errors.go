package auth

import "errors"

// Service failure taxonomy. Every operation converts internal failures
// into one of these; anything else surfacing from the store is wrapped
// as a generic operation failure by the HTTP layer.
var (
	// ErrValidation indicates missing or malformed input, caught before
	// any store access.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified indicates a login attempt on an unverified account.
	ErrNotVerified = errors.New("please verify your email first")
	// ErrInvalidOrExpiredCode indicates a wrong or stale 6-digit code.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	// ErrAlreadyVerified indicates a resend for a verified account.
	ErrAlreadyVerified = errors.New("email is already verified")
	// ErrTooManyAttempts indicates the attempt-limit policy fired.
	ErrTooManyAttempts = errors.New("too many attempts, try again later")
)
