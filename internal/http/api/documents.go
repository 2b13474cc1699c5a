package api

import (
	"errors"
	"net/http"

	"github.com/finbot-app/finbot/internal/analysis"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DocumentHandler proxies document uploads to the analysis backend.
type DocumentHandler struct {
	client    *analysis.Client
	maxUpload int64
}

// NewDocumentHandler constructs a DocumentHandler.
func NewDocumentHandler(client *analysis.Client, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{client: client, maxUpload: maxUpload}
}

// Analyze accepts one multipart file and returns the backend's summary.
func (h *DocumentHandler) Analyze(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	file, header, errForm := c.Request.FormFile("file")
	if errForm != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or oversized file"})
		return
	}
	defer func() {
		if errClose := file.Close(); errClose != nil {
			log.WithError(errClose).Warn("api: close upload failed")
		}
	}()

	result, errAnalyze := h.client.Analyze(c.Request.Context(), header.Filename, file)
	if errAnalyze != nil {
		if errors.Is(errAnalyze, analysis.ErrBackendUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "document analysis unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "document analysis failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": result.Summary})
}
