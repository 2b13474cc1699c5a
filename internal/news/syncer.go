package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultSyncInterval   = 30 * time.Minute
	defaultRequestTimeout = 15 * time.Second
)

// Syncer keeps the news table synced with the configured news API.
type Syncer struct {
	db       *gorm.DB
	url      string
	interval time.Duration
	client   *http.Client
	now      func() time.Time
}

// NewSyncer constructs a news syncer. A nil db or empty url disables
// syncing; Start on a nil Syncer is a no-op so the server boots fine
// without a news provider configured.
func NewSyncer(db *gorm.DB, url string, interval time.Duration) *Syncer {
	if db == nil || strings.TrimSpace(url) == "" {
		return nil
	}
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &Syncer{
		db:       db,
		url:      strings.TrimSpace(url),
		interval: interval,
		client:   &http.Client{Timeout: defaultRequestTimeout},
		now:      time.Now,
	}
}

// Start runs the sync loop in the background.
func (s *Syncer) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go s.run(ctx)
	log.Infof("news syncer started (interval=%s)", s.interval)
}

func (s *Syncer) run(ctx context.Context) {
	if errSync := s.SyncOnce(ctx); errSync != nil {
		log.WithError(errSync).Warn("news syncer: initial sync failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if errSync := s.SyncOnce(ctx); errSync != nil {
				log.WithError(errSync).Warn("news syncer: sync failed")
			}
		}
	}
}

// SyncOnce fetches and persists the latest headlines.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("news syncer: nil db")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestCtx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	req, errReq := http.NewRequestWithContext(requestCtx, http.MethodGet, s.url, nil)
	if errReq != nil {
		return fmt.Errorf("news syncer: build request: %w", errReq)
	}

	resp, errDo := s.client.Do(req)
	if errDo != nil {
		return fmt.Errorf("news syncer: request failed: %w", errDo)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("news syncer: close response body failed")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("news syncer: unexpected status %d", resp.StatusCode)
	}

	body, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return fmt.Errorf("news syncer: read response: %w", errRead)
	}

	articles, errParse := ParseArticlesPayload(body)
	if errParse != nil {
		return errParse
	}
	if len(articles) == 0 {
		return fmt.Errorf("news syncer: empty payload")
	}

	return StoreArticles(ctx, s.db, articles, s.now().UTC())
}
