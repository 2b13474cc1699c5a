package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	dbpkg "github.com/finbot-app/finbot/internal/db"
	"github.com/finbot-app/finbot/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultRegion is the sentinel region for chats saved without one.
	DefaultRegion = "Global"
	// DefaultTitle is used when a chat has no user message to derive a
	// title from.
	DefaultTitle = "New conversation"

	titleMaxRunes = 50
)

// Service owns chat persistence and the history-derived suggestion
// heuristics. Every operation is scoped to the caller's resolved user
// id; ownership is part of each lookup predicate so non-owners can
// never distinguish "absent" from "not yours".
type Service struct {
	db   *gorm.DB
	now  func() time.Time
	intn func(int) int
}

// NewService constructs the chat Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now, intn: rand.Intn}
}

// SaveInput carries one chat save request. ID may be a previously
// returned server id or a client-generated id; either resolves to the
// same document on subsequent saves.
type SaveInput struct {
	ID        string
	Title     string
	Messages  []models.Message
	Model     string
	Region    string
	CreatedAt *time.Time
}

// SaveChat upserts a chat for the owner. When ID matches an existing
// document owned by the caller it is updated in place; otherwise a new
// document is inserted, keeping the supplied ID as the client alternate
// key. updated_at is stamped on every save; concurrent saves for the
// same id are last-write-wins. The returned id may differ from the
// input id when a new document was created.
func (s *Service) SaveChat(ctx context.Context, userID uint64, input SaveInput) (string, error) {
	if userID == 0 {
		return "", ErrValidation
	}

	now := s.now().UTC()
	region := input.Region
	if region == "" {
		region = DefaultRegion
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = deriveTitle(input.Messages)
	}
	messages, errEncode := models.EncodeMessages(input.Messages)
	if errEncode != nil {
		return "", ErrValidation
	}

	if input.ID != "" {
		updates := map[string]any{
			"title":      title,
			"model":      input.Model,
			"region":     region,
			"messages":   messages,
			"updated_at": now,
		}
		res := s.db.WithContext(ctx).Model(&models.Chat{}).
			Where("user_id = ? AND (id = ? OR client_id = ?)", userID, input.ID, input.ID).
			Updates(updates)
		if res.Error != nil {
			return "", fmt.Errorf("chat: update: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return input.ID, nil
		}
		// The id matched nothing, fall through to an insert. This
		// covers first saves under a client-generated id and the race
		// where the target was deleted between read and write.
	}

	createdAt := now
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}
	doc := models.Chat{
		ID:        uuid.NewString(),
		ClientID:  input.ID,
		UserID:    userID,
		Title:     title,
		Model:     input.Model,
		Region:    region,
		Messages:  messages,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&doc).Error; errCreate != nil {
		return "", fmt.Errorf("chat: insert: %w", errCreate)
	}
	return doc.ID, nil
}

// GetUserChats returns all of the caller's chats, most recently updated
// first.
func (s *Service) GetUserChats(ctx context.Context, userID uint64) ([]models.Chat, error) {
	if userID == 0 {
		return nil, ErrValidation
	}
	var chats []models.Chat
	errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&chats).Error
	if errFind != nil {
		return nil, fmt.Errorf("chat: list: %w", errFind)
	}
	return chats, nil
}

// SearchUserChats returns the caller's chats whose title contains q,
// case-insensitively on either dialect, most recently updated first. An
// empty q degrades to the full list.
func (s *Service) SearchUserChats(ctx context.Context, userID uint64, q string) ([]models.Chat, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.GetUserChats(ctx, userID)
	}
	if userID == 0 {
		return nil, ErrValidation
	}
	var chats []models.Chat
	errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(dbpkg.CaseInsensitiveLikeExpr(s.db, "title"), dbpkg.NormalizeLikePattern(s.db, "%"+q+"%")).
		Order("updated_at DESC").
		Find(&chats).Error
	if errFind != nil {
		return nil, fmt.Errorf("chat: search: %w", errFind)
	}
	return chats, nil
}

// GetChatByID returns one chat by primary id or client alternate id.
// Ownership is part of the predicate.
func (s *Service) GetChatByID(ctx context.Context, userID uint64, chatID string) (*models.Chat, error) {
	if userID == 0 || chatID == "" {
		return nil, ErrValidation
	}
	var doc models.Chat
	errFind := s.db.WithContext(ctx).
		Where("user_id = ? AND (id = ? OR client_id = ?)", userID, chatID, chatID).
		First(&doc).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("chat: get: %w", errFind)
	}
	return &doc, nil
}

// DeleteChat removes one chat with the same dual-lookup predicate as
// GetChatByID. Zero rows matched collapses into
// ErrNotFoundOrUnauthorized.
func (s *Service) DeleteChat(ctx context.Context, userID uint64, chatID string) error {
	if userID == 0 || chatID == "" {
		return ErrValidation
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND (id = ? OR client_id = ?)", userID, chatID, chatID).
		Delete(&models.Chat{})
	if res.Error != nil {
		return fmt.Errorf("chat: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFoundOrUnauthorized
	}
	return nil
}

func deriveTitle(msgs []models.Message) string {
	for i := range msgs {
		if msgs[i].Role != models.RoleUser {
			continue
		}
		content := strings.TrimSpace(msgs[i].Content)
		if content == "" {
			continue
		}
		runes := []rune(content)
		if len(runes) > titleMaxRunes {
			return string(runes[:titleMaxRunes]) + "..."
		}
		return content
	}
	return DefaultTitle
}
