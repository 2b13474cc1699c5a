package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerificationState is the claim set carried by the browser-visible
// marker cookies. The guard reads these without a store round trip, so
// they are signed to keep the flags tamper-evident; real enforcement
// still happens in the services, which query the session store.
type VerificationState struct {
	Verified bool   `json:"verified"`
	Pending  bool   `json:"pending"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SignVerificationState signs a marker token with the cookie secret.
func SignVerificationState(secret string, state VerificationState, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("security: empty cookie secret")
	}
	state.IssuedAt = jwt.NewNumericDate(now)
	state.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, state)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign state token: %w", errSign)
	}
	return signed, nil
}

// ParseVerificationState verifies and decodes a marker token. Invalid or
// expired tokens decode to the zero state rather than an error so the
// guard can treat them as absent markers.
func ParseVerificationState(secret, raw string) VerificationState {
	if secret == "" || raw == "" {
		return VerificationState{}
	}
	var state VerificationState
	token, errParse := jwt.ParseWithClaims(raw, &state, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil || token == nil || !token.Valid {
		return VerificationState{}
	}
	return state
}
