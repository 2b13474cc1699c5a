package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbot-app/finbot/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSessionTTL is the session validity window from creation.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Sessions manages the DB-backed session lifecycle.
type Sessions struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessions constructs a Sessions store.
func NewSessions(db *gorm.DB, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{db: db, ttl: ttl, now: time.Now}
}

// TTL returns the configured session validity window.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Create inserts a new session for the user and returns its opaque id.
func (s *Sessions) Create(ctx context.Context, userID uint64) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("sessions: not initialized")
	}
	now := s.now().UTC()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if errCreate := s.db.WithContext(ctx).Create(&session).Error; errCreate != nil {
		return "", fmt.Errorf("sessions: create: %w", errCreate)
	}
	return session.ID, nil
}

// Get returns the session for id, or nil when it does not exist or has
// expired. Expired sessions are logically absent and never returned.
func (s *Sessions) Get(ctx context.Context, id string) (*models.Session, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sessions: not initialized")
	}
	if id == "" {
		return nil, nil
	}
	var session models.Session
	errFind := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("sessions: get: %w", errFind)
	}
	if !session.Valid(s.now().UTC()) {
		return nil, nil
	}
	return &session, nil
}

// Clear deletes the session. A missing session is not an error.
func (s *Sessions) Clear(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sessions: not initialized")
	}
	if id == "" {
		return nil
	}
	if errDelete := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; errDelete != nil {
		return fmt.Errorf("sessions: clear: %w", errDelete)
	}
	return nil
}
