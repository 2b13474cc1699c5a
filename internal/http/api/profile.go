package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/finbot-app/finbot/internal/auth"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	svc *auth.Service
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc *auth.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Get returns the public profile projection for the caller.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, errGet := h.svc.GetProfile(c.Request.Context(), currentUserID(c))
	if errGet != nil {
		if errors.Is(errGet, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get profile failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// UpdatePreferences replaces the caller's preference map with the
// request body, which must be a JSON object.
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	body, errRead := io.ReadAll(c.Request.Body)
	if errRead != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var probe map[string]any
	if errParse := json.Unmarshal(body, &probe); errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preferences must be a JSON object"})
		return
	}

	if errUpdate := h.svc.UpdatePreferences(c.Request.Context(), currentUserID(c), body); errUpdate != nil {
		if errors.Is(errUpdate, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update preferences failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
