package models

import "time"

// NewsArticle is one synced headline from the external news API. Rows
// not seen in a sync run are pruned by the syncer.
type NewsArticle struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Headline    string    `gorm:"type:text;not null"`                            // Article title.
	Source      string    `gorm:"type:text"`                                     // Publisher name.
	URL         string    `gorm:"type:text;not null;uniqueIndex:idx_news_url"`   // Canonical link.
	Symbol      string    `gorm:"type:text;index"`                               // Related ticker or topic tag.
	PublishedAt time.Time `gorm:"not null;index"`                                // Publication time.
	LastSeenAt  time.Time `gorm:"not null"`                                      // Last sync that returned it.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
