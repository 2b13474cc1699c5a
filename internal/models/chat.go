package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// MessageRole enumerates the closed set of chat message roles.
type MessageRole string

const (
	// RoleUser marks a message authored by the account owner.
	RoleUser MessageRole = "user"
	// RoleAssistant marks a model-generated reply.
	RoleAssistant MessageRole = "assistant"
	// RoleSystem marks an injected system prompt.
	RoleSystem MessageRole = "system"
	// RoleFile marks an uploaded-document marker message.
	RoleFile MessageRole = "file"
	// RoleAnalysis marks a document-analysis result message.
	RoleAnalysis MessageRole = "analysis"
)

// ValidateRole reports whether r is a known message role.
func ValidateRole(r MessageRole) error {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleFile, RoleAnalysis:
		return nil
	default:
		return fmt.Errorf("models: unknown message role %q", r)
	}
}

// Message is one ordered entry of a chat document. The persistence layer
// treats every role uniformly; rendering semantics live downstream.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Source    string      `json:"source,omitempty"`
	Model     string      `json:"model,omitempty"`
	Region    string      `json:"region,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Chat represents a persisted conversation owned by exactly one user.
// Messages are stored as a single JSON document; insertion order is the
// array order and is never rewritten by the store.
type Chat struct {
	ID       string         `gorm:"type:text;primaryKey"` // Server-assigned id.
	ClientID string         `gorm:"type:text;index"`      // Optional client-generated alternate key.
	UserID   uint64         `gorm:"not null;index"`       // Owning account.
	Title    string         `gorm:"type:text;not null"`   // Derived from the first user message.
	Model    string         `gorm:"type:text;not null"`   // Selected model identifier.
	Region   string         `gorm:"type:text;not null"`   // Region tag, defaults to Global.
	Messages datatypes.JSON `gorm:"type:json"`            // Ordered message array.

	CreatedAt time.Time `gorm:"not null"`       // First save.
	UpdatedAt time.Time `gorm:"not null;index"` // Advances on every save.
}

// EncodeMessages validates and serializes an ordered message list for
// storage. Unknown roles are rejected at this boundary rather than
// trusted into the document column.
func EncodeMessages(msgs []Message) (datatypes.JSON, error) {
	for i := range msgs {
		if errRole := ValidateRole(msgs[i].Role); errRole != nil {
			return nil, errRole
		}
	}
	payload, errMarshal := json.Marshal(msgs)
	if errMarshal != nil {
		return nil, fmt.Errorf("models: encode messages: %w", errMarshal)
	}
	return datatypes.JSON(payload), nil
}

// DecodeMessages deserializes a stored message column. An empty column
// decodes to an empty list.
func DecodeMessages(raw datatypes.JSON) ([]Message, error) {
	if len(raw) == 0 {
		return []Message{}, nil
	}
	var msgs []Message
	if errUnmarshal := json.Unmarshal(raw, &msgs); errUnmarshal != nil {
		return nil, fmt.Errorf("models: decode messages: %w", errUnmarshal)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}
