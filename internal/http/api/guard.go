package api

import (
	"net/http"

	"github.com/finbot-app/finbot/internal/security"
	"github.com/gin-gonic/gin"
)

// Cookie names shared between the API handlers and the guard.
const (
	SessionCookie  = "user-session"
	VerifiedCookie = "email_verified"
	PendingCookie  = "pending_verification"
)

// Page routes classified by the guard.
const (
	PageLogin          = "/login"
	PageSignup         = "/signup"
	PageForgotPassword = "/forgot-password"
	PageVerify         = "/verify"
	PageApp            = "/app"
)

var publicPages = map[string]bool{
	PageLogin:          true,
	PageSignup:         true,
	PageForgotPassword: true,
}

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Decide evaluates the route-gating table for one navigation. It reads
// only the caller-presented flags, never the session store, so a stale
// marker can pass here; the services re-check against the store on
// every call. Rules in priority order: the verify page needs a pending
// marker, public pages bounce verified sessions to the app, protected
// pages need a session, and a session without a verified or pending
// marker is sent back to login.
func Decide(route string, hasSession bool, state security.VerificationState) Decision {
	if route == PageVerify {
		if !state.Pending {
			return Decision{RedirectTo: PageSignup}
		}
		return Decision{Allow: true}
	}
	if publicPages[route] {
		if hasSession && state.Verified {
			return Decision{RedirectTo: PageApp}
		}
		return Decision{Allow: true}
	}
	if !hasSession {
		return Decision{RedirectTo: PageLogin}
	}
	if !state.Verified && !state.Pending {
		return Decision{RedirectTo: PageLogin}
	}
	return Decision{Allow: true}
}

// GuardMiddleware applies Decide to every request in its group,
// redirecting instead of serving when the table says so.
func GuardMiddleware(cookieSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, errCookie := c.Cookie(SessionCookie)
		hasSession := errCookie == nil

		state := markerState(c, cookieSecret)
		decision := Decide(c.Request.URL.Path, hasSession, state)
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

// markerState merges the two signed marker cookies into one state. A
// missing or tampered marker reads as absent.
func markerState(c *gin.Context, secret string) security.VerificationState {
	var state security.VerificationState
	if raw, errCookie := c.Cookie(VerifiedCookie); errCookie == nil {
		parsed := security.ParseVerificationState(secret, raw)
		state.Verified = parsed.Verified
		if state.Email == "" {
			state.Email = parsed.Email
		}
	}
	if raw, errCookie := c.Cookie(PendingCookie); errCookie == nil {
		parsed := security.ParseVerificationState(secret, raw)
		state.Pending = parsed.Pending
		if state.Email == "" {
			state.Email = parsed.Email
		}
	}
	return state
}
