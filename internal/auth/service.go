package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finbot-app/finbot/internal/mail"
	"github.com/finbot-app/finbot/internal/models"
	"github.com/finbot-app/finbot/internal/ratelimit"
	"github.com/finbot-app/finbot/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Code expiry windows. The resend window is deliberately longer than the
// registration window; the asymmetry is documented product behavior and
// must not be unified here.
const (
	verificationCodeWindow = 15 * time.Minute
	resendCodeWindow       = 24 * time.Hour
	resetCodeWindow        = 15 * time.Minute
)

// Generic responses for account-enumeration-sensitive paths. The same
// message is returned whether or not the email exists.
const (
	GenericResendMessage = "If your email exists, a new verification code has been sent"
	GenericResetMessage  = "If your email exists in our system, you will receive a reset code"
)

// Service implements registration, verification, login, logout, and the
// password reset workflow. It owns the account status state machine:
// pending accounts become active through verifyEmail or a completed
// password reset, and only active accounts may log in.
type Service struct {
	db       *gorm.DB
	mailer   mail.Mailer
	sessions *Sessions
	limiter  *ratelimit.Manager
	now      func() time.Time
}

// NewService constructs the auth Service.
func NewService(db *gorm.DB, mailer mail.Mailer, sessions *Sessions, limiter *ratelimit.Manager) *Service {
	return &Service{
		db:       db,
		mailer:   mailer,
		sessions: sessions,
		limiter:  limiter,
		now:      time.Now,
	}
}

// Sessions exposes the session store for middleware.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// RegisterResult reports a successful registration.
type RegisterResult struct {
	UserID               uint64
	Email                string
	RequiresVerification bool
}

// Register creates a pending account with a fresh 15-minute verification
// code and triggers the verification email. A mail delivery failure is
// logged but does not fail the registration: the account row is already
// persisted and the code can be resent.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, password string) (RegisterResult, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || lastName == "" || email == "" || password == "" {
		return RegisterResult{}, ErrValidation
	}
	if !strings.Contains(email, "@") {
		return RegisterResult{}, ErrValidation
	}

	var existing models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if errFind == nil {
		return RegisterResult{}, ErrDuplicateEmail
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return RegisterResult{}, fmt.Errorf("auth: lookup user: %w", errFind)
	}

	code, errCode := security.GenerateCode()
	if errCode != nil {
		return RegisterResult{}, errCode
	}
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return RegisterResult{}, errHash
	}

	now := s.now().UTC()
	expires := now.Add(verificationCodeWindow)
	user := models.User{
		FirstName:               firstName,
		LastName:                lastName,
		Email:                   email,
		Password:                hash,
		Status:                  models.StatusPending,
		IsVerified:              false,
		VerificationCode:        code,
		VerificationCodeExpires: &expires,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		return RegisterResult{}, fmt.Errorf("auth: create user: %w", errCreate)
	}

	if errMail := s.mailer.SendVerificationCode(ctx, email, firstName, code, "15 minutes"); errMail != nil {
		log.WithError(errMail).WithField("email", email).Warn("auth: verification email failed")
	}

	return RegisterResult{UserID: user.ID, Email: email, RequiresVerification: true}, nil
}

// VerifyEmail activates a pending account when the supplied code matches
// and has not expired. The status flip and code clear happen in one
// update so no partial state is ever visible.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (models.PublicProfile, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return models.PublicProfile{}, ErrValidation
	}
	if errLimit := s.checkAttempt(ctx, "verify", email); errLimit != nil {
		return models.PublicProfile{}, errLimit
	}

	now := s.now().UTC()
	var user models.User
	errFind := s.db.WithContext(ctx).
		Where("email = ? AND verification_code = ? AND verification_code_expires > ?", email, code, now).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.PublicProfile{}, ErrInvalidOrExpiredCode
		}
		return models.PublicProfile{}, fmt.Errorf("auth: verify lookup: %w", errFind)
	}

	updates := map[string]any{
		"status":                    models.StatusActive,
		"is_verified":               true,
		"verification_code":         "",
		"verification_code_expires": nil,
		"updated_at":                now,
	}
	if errUpdate := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; errUpdate != nil {
		return models.PublicProfile{}, fmt.Errorf("auth: verify update: %w", errUpdate)
	}

	user.Status = models.StatusActive
	user.IsVerified = true
	return user.Profile(), nil
}

// ResendVerificationCode issues a fresh code with a 24-hour window. For
// an unknown email the generic success message is returned so the
// endpoint cannot be used to enumerate accounts.
func (s *Service) ResendVerificationCode(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrValidation
	}

	var user models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return GenericResendMessage, nil
		}
		return "", fmt.Errorf("auth: resend lookup: %w", errFind)
	}
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}

	code, errCode := security.GenerateCode()
	if errCode != nil {
		return "", errCode
	}
	now := s.now().UTC()
	expires := now.Add(resendCodeWindow)
	updates := map[string]any{
		"verification_code":         code,
		"verification_code_expires": expires,
		"updated_at":                now,
	}
	if errUpdate := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; errUpdate != nil {
		return "", fmt.Errorf("auth: resend update: %w", errUpdate)
	}

	if errMail := s.mailer.SendVerificationCode(ctx, email, user.FirstName, code, "24 hours"); errMail != nil {
		log.WithError(errMail).WithField("email", email).Warn("auth: verification email failed")
	}
	return "A new verification code has been sent to your email", nil
}

// Login checks credentials and creates a session. Unknown emails and
// wrong passwords collapse into ErrInvalidCredentials; an unverified
// account gets the distinguishable ErrNotVerified instead. That
// disclosure trade-off is deliberate and mirrors the product.
func (s *Service) Login(ctx context.Context, email, password, remoteAddr string) (models.PublicProfile, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.PublicProfile{}, "", ErrValidation
	}
	if errLimit := s.checkAttemptFrom(ctx, "login", email, remoteAddr); errLimit != nil {
		return models.PublicProfile{}, "", errLimit
	}

	var user models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.PublicProfile{}, "", ErrInvalidCredentials
		}
		return models.PublicProfile{}, "", fmt.Errorf("auth: login lookup: %w", errFind)
	}
	if errStatus := models.ValidateStatus(user.Status); errStatus != nil {
		return models.PublicProfile{}, "", fmt.Errorf("auth: login: %w", errStatus)
	}
	if !user.IsVerified || user.Status != models.StatusActive {
		return models.PublicProfile{}, "", ErrNotVerified
	}
	if !security.CheckPassword(user.Password, password) {
		return models.PublicProfile{}, "", ErrInvalidCredentials
	}

	sessionID, errSession := s.sessions.Create(ctx, user.ID)
	if errSession != nil {
		return models.PublicProfile{}, "", errSession
	}

	now := s.now().UTC()
	if errStamp := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{"last_active_at": now, "updated_at": now}).Error; errStamp != nil {
		log.WithError(errStamp).Warn("auth: last-active stamp failed")
	}

	return user.Profile(), sessionID, nil
}

// Logout deletes the caller's session. It always succeeds from the
// caller's point of view, even when no session existed.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if errClear := s.sessions.Clear(ctx, sessionID); errClear != nil {
		log.WithError(errClear).Warn("auth: logout clear failed")
	}
}

// RequestPasswordReset stores a 15-minute reset code in the dedicated
// reset fields and emails it. The generic message is returned whether or
// not the account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrValidation
	}

	var user models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return GenericResetMessage, nil
		}
		return "", fmt.Errorf("auth: reset lookup: %w", errFind)
	}

	code, errCode := security.GenerateCode()
	if errCode != nil {
		return "", errCode
	}
	now := s.now().UTC()
	expires := now.Add(resetCodeWindow)
	updates := map[string]any{
		"reset_code":         code,
		"reset_code_expires": expires,
		"updated_at":         now,
	}
	if errUpdate := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; errUpdate != nil {
		return "", fmt.Errorf("auth: reset update: %w", errUpdate)
	}

	if errMail := s.mailer.SendPasswordReset(ctx, email, user.FirstName, code); errMail != nil {
		log.WithError(errMail).WithField("email", email).Warn("auth: reset email failed")
	}
	return GenericResetMessage, nil
}

// VerifyResetCode is a read-only check of the reset predicate, letting a
// UI confirm the code before asking for the new password. It mutates
// nothing; ResetPassword revalidates from scratch.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return ErrValidation
	}
	if errLimit := s.checkAttempt(ctx, "reset-verify", email); errLimit != nil {
		return errLimit
	}

	var user models.User
	errFind := s.db.WithContext(ctx).
		Where("email = ? AND reset_code = ? AND reset_code_expires > ?", email, code, s.now().UTC()).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("auth: reset code lookup: %w", errFind)
	}
	return nil
}

// ResetPassword revalidates the reset code against the live expiry (a
// prior VerifyResetCode success is never trusted), then installs the new
// password, activates the account, and clears the reset fields. A
// completed reset proves control of the mailbox, so it counts as
// verification.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return ErrValidation
	}

	now := s.now().UTC()
	var user models.User
	errFind := s.db.WithContext(ctx).
		Where("email = ? AND reset_code = ? AND reset_code_expires > ?", email, code, now).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("auth: reset lookup: %w", errFind)
	}

	hash, errHash := security.HashPassword(newPassword)
	if errHash != nil {
		return errHash
	}
	updates := map[string]any{
		"password":           hash,
		"status":             models.StatusActive,
		"is_verified":        true,
		"reset_code":         "",
		"reset_code_expires": nil,
		"updated_at":         now,
	}
	if errUpdate := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; errUpdate != nil {
		return fmt.Errorf("auth: reset password update: %w", errUpdate)
	}
	return nil
}

// GetProfile returns the public projection for a user id.
func (s *Service) GetProfile(ctx context.Context, userID uint64) (models.PublicProfile, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.PublicProfile{}, ErrInvalidCredentials
		}
		return models.PublicProfile{}, fmt.Errorf("auth: profile lookup: %w", errFind)
	}
	return user.Profile(), nil
}

// UpdatePreferences replaces the user's preference map.
func (s *Service) UpdatePreferences(ctx context.Context, userID uint64, prefs []byte) error {
	updates := map[string]any{"preferences": prefs, "updated_at": s.now().UTC()}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("auth: update preferences: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Service) checkAttempt(ctx context.Context, action, email string) error {
	return s.checkAttemptFrom(ctx, action, email, "")
}

func (s *Service) checkAttemptFrom(ctx context.Context, action, email, remoteAddr string) error {
	if s.limiter == nil {
		return nil
	}
	result, errAllow := s.limiter.Allow(ctx, ratelimit.AttemptKey(action, email, remoteAddr))
	if errAllow != nil {
		log.WithError(errAllow).Warn("auth: attempt limiter failed open")
		return nil
	}
	if !result.Allowed {
		return ErrTooManyAttempts
	}
	return nil
}
