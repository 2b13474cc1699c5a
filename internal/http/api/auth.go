package api

import (
	"errors"
	"net/http"

	"github.com/finbot-app/finbot/internal/auth"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, verification, login, logout, and the
// password reset flow.
type AuthHandler struct {
	svc     *auth.Service
	cookies CookieConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *auth.Service, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies}
}

// signupRequest captures the registration payload.
type signupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Signup registers a new pending account and sets the pending marker so
// the verify page opens for this browser.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, errRegister := h.svc.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if errRegister != nil {
		switch {
		case errors.Is(errRegister, auth.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errRegister.Error()})
		case errors.Is(errRegister, auth.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": errRegister.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	h.cookies.setMarkerCookies(c, result.Email, false, true)
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"userId":               result.UserID,
		"email":                result.Email,
		"requiresVerification": result.RequiresVerification,
	})
}

// codeRequest captures an email+code payload.
type codeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify activates a pending account and swaps the pending marker for
// the verified one.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req codeRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, errVerify := h.svc.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if errVerify != nil {
		switch {
		case errors.Is(errVerify, auth.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errVerify.Error()})
		case errors.Is(errVerify, auth.ErrInvalidOrExpiredCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": errVerify.Error()})
		case errors.Is(errVerify, auth.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": errVerify.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	h.cookies.setMarkerCookies(c, profile.Email, true, false)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// emailRequest captures an email-only payload.
type emailRequest struct {
	Email string `json:"email"`
}

// ResendCode issues a fresh verification code. The response for unknown
// emails is indistinguishable from the known-email case.
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req emailRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, errResend := h.svc.ResendVerificationCode(c.Request.Context(), req.Email)
	if errResend != nil {
		switch {
		case errors.Is(errResend, auth.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errResend.Error()})
		case errors.Is(errResend, auth.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": errResend.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "resend failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// loginRequest captures the login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials, creates the session, and sets the session
// cookie plus the verified marker. Unverified accounts get a
// distinguishable message; that disclosure is deliberate.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, sessionID, errLogin := h.svc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if errLogin != nil {
		switch {
		case errors.Is(errLogin, auth.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errLogin.Error()})
		case errors.Is(errLogin, auth.ErrNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": errLogin.Error()})
		case errors.Is(errLogin, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errLogin.Error()})
		case errors.Is(errLogin, auth.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": errLogin.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	h.cookies.setSessionCookie(c, sessionID)
	h.cookies.setMarkerCookies(c, profile.Email, true, false)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// Logout best-effort deletes the session and clears every auth cookie.
// It always reports success.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, errCookie := c.Cookie(SessionCookie); errCookie == nil {
		h.svc.Logout(c.Request.Context(), sessionID)
	}
	h.cookies.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ForgotPassword starts the reset flow. The response never reveals
// whether the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, errRequest := h.svc.RequestPasswordReset(c.Request.Context(), req.Email)
	if errRequest != nil {
		if errors.Is(errRequest, auth.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errRequest.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset request failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// VerifyResetCode is the read-only "code accepted" step of the reset
// flow.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req codeRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if errVerify := h.svc.VerifyResetCode(c.Request.Context(), req.Email, req.Code); errVerify != nil {
		switch {
		case errors.Is(errVerify, auth.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errVerify.Error()})
		case errors.Is(errVerify, auth.ErrInvalidOrExpiredCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": errVerify.Error()})
		case errors.Is(errVerify, auth.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": errVerify.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reset verification failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "code accepted"})
}

// resetRequest captures the final reset payload.
type resetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword installs the new password after revalidating the code
// against the live expiry.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if errReset := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); errReset != nil {
		switch {
		case errors.Is(errReset, auth.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errReset.Error()})
		case errors.Is(errReset, auth.ErrInvalidOrExpiredCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": errReset.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "password reset failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password has been reset"})
}
