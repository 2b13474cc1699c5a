package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finbot-app/finbot/internal/security"
	"github.com/gin-gonic/gin"
)

func TestDecide_DecisionTable(t *testing.T) {
	verified := security.VerificationState{Verified: true}
	pending := security.VerificationState{Pending: true}
	none := security.VerificationState{}

	cases := []struct {
		name       string
		route      string
		hasSession bool
		state      security.VerificationState
		allow      bool
		redirect   string
	}{
		{"verify page without pending marker", PageVerify, false, none, false, PageSignup},
		{"verify page with pending marker", PageVerify, false, pending, true, ""},
		{"login while already signed in", PageLogin, true, verified, false, PageApp},
		{"login anonymous", PageLogin, false, none, true, ""},
		{"signup with session but unverified", PageSignup, true, none, true, ""},
		{"protected without session", PageApp, false, none, false, PageLogin},
		{"protected with session but no markers", PageApp, true, none, false, PageLogin},
		{"protected with session and verified", PageApp, true, verified, true, ""},
		{"protected with session and pending", PageApp, true, pending, true, ""},
	}

	for _, tc := range cases {
		got := Decide(tc.route, tc.hasSession, tc.state)
		if got.Allow != tc.allow || got.RedirectTo != tc.redirect {
			t.Fatalf("%s: got %+v, want allow=%v redirect=%q", tc.name, got, tc.allow, tc.redirect)
		}
	}
}

func TestGuardMiddleware_RedirectsAndPasses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "guard-test-secret"

	r := gin.New()
	r.Use(GuardMiddleware(secret))
	for _, page := range []string{PageLogin, PageSignup, PageVerify, PageApp} {
		r.GET(page, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	signedVerified, errSign := security.SignVerificationState(secret, security.VerificationState{Verified: true}, time.Hour, time.Now())
	if errSign != nil {
		t.Fatalf("sign: %v", errSign)
	}

	// Anonymous hit on a protected page bounces to login.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, PageApp, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != PageLogin {
		t.Fatalf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	// A signed-in verified browser hitting login bounces to the app.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, PageLogin, nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "some-session"})
	req.AddCookie(&http.Cookie{Name: VerifiedCookie, Value: signedVerified})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != PageApp {
		t.Fatalf("expected redirect to app, got %d %q", w.Code, w.Header().Get("Location"))
	}

	// A tampered marker reads as absent: session without markers goes
	// back to login.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, PageApp, nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "some-session"})
	req.AddCookie(&http.Cookie{Name: VerifiedCookie, Value: "forged"})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != PageLogin {
		t.Fatalf("expected tampered marker to bounce to login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	// The full happy path passes.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, PageApp, nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "some-session"})
	req.AddCookie(&http.Cookie{Name: VerifiedCookie, Value: signedVerified})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}
