package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// AccountStatus enumerates the account lifecycle states.
type AccountStatus string

const (
	// StatusPending marks an account awaiting email verification.
	StatusPending AccountStatus = "pending"
	// StatusActive marks a verified account that may log in.
	StatusActive AccountStatus = "active"
	// StatusSuspended marks an account locked by admin tooling.
	StatusSuspended AccountStatus = "suspended"
)

// ValidateStatus reports whether s is a known account status.
func ValidateStatus(s AccountStatus) error {
	switch s {
	case StatusPending, StatusActive, StatusSuspended:
		return nil
	default:
		return fmt.Errorf("models: unknown account status %q", s)
	}
}

// User represents a registered account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	FirstName string `gorm:"type:text;not null"`             // Given name.
	LastName  string `gorm:"type:text;not null"`             // Family name.
	Email     string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Password  string `gorm:"type:text;not null"`             // Hashed password.

	Status     AccountStatus `gorm:"type:text;not null;default:pending"` // Lifecycle state.
	IsVerified bool          `gorm:"not null;default:false"`             // Email verified flag.

	VerificationCode        string     `gorm:"type:text"` // Pending email verification code.
	VerificationCodeExpires *time.Time // Verification code expiry.
	ResetCode               string     `gorm:"type:text"` // In-flight password reset code.
	ResetCodeExpires        *time.Time // Reset code expiry.

	Preferences  datatypes.JSON `gorm:"type:json"` // Free-form preference map.
	LastActiveAt *time.Time     // Last successful login.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// PublicProfile is the caller-visible projection of a user record.
type PublicProfile struct {
	ID         uint64        `json:"id"`
	FirstName  string        `json:"firstName"`
	LastName   string        `json:"lastName"`
	Email      string        `json:"email"`
	Status     AccountStatus `json:"status"`
	IsVerified bool          `json:"isVerified"`
}

// Profile returns the public projection of the user. The password hash
// and any live codes never leave the service layer.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Status:     u.Status,
		IsVerified: u.IsVerified,
	}
}
