package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbot-app/finbot/internal/models"
	"gorm.io/gorm"
)

// StoreArticles upserts the parsed articles keyed by url and prunes
// rows the current sync did not return. The whole swap runs in one
// transaction so readers never observe a half-pruned table.
func StoreArticles(ctx context.Context, db *gorm.DB, articles []models.NewsArticle, syncTime time.Time) error {
	if db == nil {
		return fmt.Errorf("news: nil db")
	}
	syncTime = syncTime.UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range articles {
			article := articles[i]
			article.LastSeenAt = syncTime
			if article.PublishedAt.IsZero() {
				article.PublishedAt = syncTime
			}

			var existing models.NewsArticle
			errFind := tx.Where("url = ?", article.URL).First(&existing).Error
			if errFind == nil {
				updates := map[string]any{
					"headline":     article.Headline,
					"source":       article.Source,
					"symbol":       article.Symbol,
					"published_at": article.PublishedAt,
					"last_seen_at": syncTime,
				}
				if errUpdate := tx.Model(&models.NewsArticle{}).Where("id = ?", existing.ID).Updates(updates).Error; errUpdate != nil {
					return fmt.Errorf("news: update article: %w", errUpdate)
				}
				continue
			}
			if !errors.Is(errFind, gorm.ErrRecordNotFound) {
				return fmt.Errorf("news: lookup article: %w", errFind)
			}
			if errCreate := tx.Create(&article).Error; errCreate != nil {
				return fmt.Errorf("news: insert article: %w", errCreate)
			}
		}

		if errPrune := tx.Where("last_seen_at < ?", syncTime).Delete(&models.NewsArticle{}).Error; errPrune != nil {
			return fmt.Errorf("news: prune articles: %w", errPrune)
		}
		return nil
	})
}

// Latest returns up to limit headlines, newest publication first,
// optionally filtered by symbol.
func Latest(ctx context.Context, db *gorm.DB, symbol string, limit int) ([]models.NewsArticle, error) {
	if db == nil {
		return nil, fmt.Errorf("news: nil db")
	}
	if limit <= 0 {
		limit = 20
	}
	query := db.WithContext(ctx).Order("published_at DESC").Limit(limit)
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	var articles []models.NewsArticle
	if errFind := query.Find(&articles).Error; errFind != nil {
		return nil, fmt.Errorf("news: list articles: %w", errFind)
	}
	return articles, nil
}
