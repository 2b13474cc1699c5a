package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/finbot-app/finbot/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store reads and seeds DB-backed settings. It is constructed once at
// boot and injected; callers read typed values per key.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a settings Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Seed inserts a default value for key unless a row already exists.
func (s *Store) Seed(ctx context.Context, key string, value any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("settings: not initialized")
	}
	payload, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("settings: marshal %s: %w", key, errMarshal)
	}

	var existing models.Setting
	errFind := s.db.WithContext(ctx).Where("key = ?", key).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("settings: lookup %s: %w", key, errFind)
	}

	record := models.Setting{Key: key, Value: datatypes.JSON(payload)}
	if errCreate := s.db.WithContext(ctx).Create(&record).Error; errCreate != nil {
		return fmt.Errorf("settings: seed %s: %w", key, errCreate)
	}
	return nil
}

// raw returns the stored JSON value for key.
func (s *Store) raw(ctx context.Context, key string) (json.RawMessage, bool) {
	if s == nil || s.db == nil {
		return nil, false
	}
	var row models.Setting
	if errFind := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error; errFind != nil {
		return nil, false
	}
	if len(row.Value) == 0 {
		return nil, false
	}
	return json.RawMessage(row.Value), true
}

// String returns the string value for key, or fallback when absent.
func (s *Store) String(ctx context.Context, key, fallback string) string {
	raw, ok := s.raw(ctx, key)
	if !ok {
		return fallback
	}
	var v string
	if errUnmarshal := json.Unmarshal(raw, &v); errUnmarshal != nil {
		return fallback
	}
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Int returns the non-negative int value for key, or fallback.
func (s *Store) Int(ctx context.Context, key string, fallback int) int {
	raw, ok := s.raw(ctx, key)
	if !ok {
		return fallback
	}
	var v int
	if errUnmarshal := json.Unmarshal(raw, &v); errUnmarshal != nil {
		return fallback
	}
	if v < 0 {
		return fallback
	}
	return v
}

// Bool returns the bool value for key, or fallback.
func (s *Store) Bool(ctx context.Context, key string, fallback bool) bool {
	raw, ok := s.raw(ctx, key)
	if !ok {
		return fallback
	}
	var v bool
	if errUnmarshal := json.Unmarshal(raw, &v); errUnmarshal != nil {
		return fallback
	}
	return v
}
