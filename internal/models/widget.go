package models

import "time"

// WidgetKind enumerates dashboard market widget types.
type WidgetKind string

const (
	// WidgetIndex shows a market index.
	WidgetIndex WidgetKind = "index"
	// WidgetStock shows a single equity.
	WidgetStock WidgetKind = "stock"
	// WidgetCrypto shows a cryptocurrency pair.
	WidgetCrypto WidgetKind = "crypto"
	// WidgetFX shows a currency pair.
	WidgetFX WidgetKind = "fx"
)

// MarketWidget is a dashboard widget definition. Defaults are seeded at
// migration; the third-party widget JS rendering them is external.
type MarketWidget struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Symbol      string     `gorm:"type:text;not null;uniqueIndex"` // Instrument symbol.
	DisplayName string     `gorm:"type:text;not null"`             // Human-readable label.
	Kind        WidgetKind `gorm:"type:text;not null"`             // Widget type.
	Position    int        `gorm:"not null;default:0"`             // Dashboard ordering.
	Enabled     bool       `gorm:"not null;default:true"`          // Whether rendered.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
