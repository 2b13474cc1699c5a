package api

import (
	"net/http"
	"time"

	"github.com/finbot-app/finbot/internal/security"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// CookieConfig carries everything the handlers need to issue cookies.
type CookieConfig struct {
	Secret string
	Secure bool
	TTL    time.Duration
}

// setSessionCookie issues the HttpOnly session cookie.
func (cfg CookieConfig) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sessionID, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
}

// setMarkerCookies issues the browser-readable verification markers.
// Values are signed so the guard can trust the flags without a store
// round trip.
func (cfg CookieConfig) setMarkerCookies(c *gin.Context, email string, verified, pending bool) {
	now := time.Now().UTC()
	c.SetSameSite(http.SameSiteLaxMode)

	if verified {
		token, errSign := security.SignVerificationState(cfg.Secret, security.VerificationState{Verified: true, Email: email}, cfg.TTL, now)
		if errSign != nil {
			log.WithError(errSign).Warn("api: sign verified marker failed")
		} else {
			c.SetCookie(VerifiedCookie, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, false)
		}
	} else {
		c.SetCookie(VerifiedCookie, "", -1, "/", "", cfg.Secure, false)
	}

	if pending {
		token, errSign := security.SignVerificationState(cfg.Secret, security.VerificationState{Pending: true, Email: email}, cfg.TTL, now)
		if errSign != nil {
			log.WithError(errSign).Warn("api: sign pending marker failed")
		} else {
			c.SetCookie(PendingCookie, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, false)
		}
	} else {
		c.SetCookie(PendingCookie, "", -1, "/", "", cfg.Secure, false)
	}
}

// clearAuthCookies removes the session cookie and both markers.
func (cfg CookieConfig) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", cfg.Secure, true)
	c.SetCookie(VerifiedCookie, "", -1, "/", "", cfg.Secure, false)
	c.SetCookie(PendingCookie, "", -1, "/", "", cfg.Secure, false)
}
