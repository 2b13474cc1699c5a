package models

import "time"

// Session represents a time-boxed login session. The ID is an opaque
// string handed to the browser in the session cookie; an expired row is
// treated as absent everywhere.
type Session struct {
	ID     string `gorm:"type:text;primaryKey"` // Opaque session id.
	UserID uint64 `gorm:"not null;index"`       // Owning account.

	CreatedAt time.Time `gorm:"not null"` // Creation timestamp.
	ExpiresAt time.Time `gorm:"not null"` // Hard expiry (creation + window).
}

// Valid reports whether the session is still live at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}
