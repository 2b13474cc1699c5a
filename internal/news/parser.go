package news

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/finbot-app/finbot/internal/models"
)

// payload mirrors the news API response shape: a top-level articles
// array with nested source objects.
type payload struct {
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Symbol      string `json:"symbol"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// ParseArticlesPayload converts a raw news API response into article
// rows. Entries without a title or url are skipped; an unparseable
// publishedAt falls back to the zero time and is replaced by the sync
// time at store level.
func ParseArticlesPayload(body []byte) ([]models.NewsArticle, error) {
	var parsed payload
	if errUnmarshal := json.Unmarshal(body, &parsed); errUnmarshal != nil {
		return nil, fmt.Errorf("news: parse payload: %w", errUnmarshal)
	}

	articles := make([]models.NewsArticle, 0, len(parsed.Articles))
	for _, entry := range parsed.Articles {
		title := strings.TrimSpace(entry.Title)
		url := strings.TrimSpace(entry.URL)
		if title == "" || url == "" {
			continue
		}
		var publishedAt time.Time
		if entry.PublishedAt != "" {
			if ts, errParse := time.Parse(time.RFC3339, entry.PublishedAt); errParse == nil {
				publishedAt = ts.UTC()
			}
		}
		articles = append(articles, models.NewsArticle{
			Headline:    title,
			Source:      strings.TrimSpace(entry.Source.Name),
			URL:         url,
			Symbol:      strings.TrimSpace(entry.Symbol),
			PublishedAt: publishedAt,
		})
	}
	return articles, nil
}
