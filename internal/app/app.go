// Package app wires configuration, storage, services, and the HTTP
// server into a runnable process.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/finbot-app/finbot/internal/analysis"
	"github.com/finbot-app/finbot/internal/auth"
	"github.com/finbot-app/finbot/internal/chat"
	"github.com/finbot-app/finbot/internal/config"
	"github.com/finbot-app/finbot/internal/db"
	httpapi "github.com/finbot-app/finbot/internal/http/api"
	"github.com/finbot-app/finbot/internal/mail"
	"github.com/finbot-app/finbot/internal/news"
	"github.com/finbot-app/finbot/internal/ratelimit"
	"github.com/finbot-app/finbot/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RunServer boots the full server: database, migrations, services, the
// background news syncer, and the gin engine. It blocks until the
// context is cancelled or the listener fails.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, errDSN := config.LoadDatabaseDSN(configPath)
	if errDSN != nil {
		return errDSN
	}
	serverCfg, errCfg := config.LoadServerConfig(configPath)
	if errCfg != nil {
		return errCfg
	}

	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	settingsStore := settings.NewStore(conn)
	limiter := ratelimit.NewManager(ratelimit.PolicyFromSettings(settingsStore), nil, nil)

	siteName := settingsStore.String(ctx, settings.SiteNameKey, settings.DefaultSiteName)
	mailer := mail.NewSMTPMailer(serverCfg.SMTP, siteName)
	sessions := auth.NewSessions(conn, serverCfg.Session.TTL)
	authSvc := auth.NewService(conn, mailer, sessions, limiter)
	chatSvc := chat.NewService(conn)
	analysisClient := analysis.NewClient(serverCfg.Analysis.URL, serverCfg.Analysis.Timeout)

	news.NewSyncer(conn, serverCfg.News.URL, serverCfg.News.SyncInterval).Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       conn,
		Auth:     authSvc,
		Chat:     chatSvc,
		Analysis: analysisClient,
		Cookies: httpapi.CookieConfig{
			Secret: serverCfg.Session.CookieSecret,
			Secure: serverCfg.Session.Secure,
			TTL:    sessions.TTL(),
		},
		MaxUploadBytes: serverCfg.Analysis.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.WithError(errShutdown).Warn("server shutdown failed")
		}
		return nil
	case errServe := <-errCh:
		if errServe == http.ErrServerClosed {
			return nil
		}
		return errServe
	}
}

// requestLogger logs one line per request through logrus.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
