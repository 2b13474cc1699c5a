package api

import (
	"net/http"

	"github.com/finbot-app/finbot/internal/models"
	"github.com/finbot-app/finbot/internal/news"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler serves the market widgets and synced headlines.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// News returns the latest synced headlines, optionally filtered by
// symbol.
func (h *DashboardHandler) News(c *gin.Context) {
	articles, errList := news.Latest(c.Request.Context(), h.db, c.Query("symbol"), limitParam(c, 20))
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list news failed"})
		return
	}

	out := make([]gin.H, 0, len(articles))
	for _, article := range articles {
		out = append(out, gin.H{
			"headline":    article.Headline,
			"source":      article.Source,
			"url":         article.URL,
			"symbol":      article.Symbol,
			"publishedAt": article.PublishedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "articles": out})
}

// Widgets returns the enabled market widgets in display order.
func (h *DashboardHandler) Widgets(c *gin.Context) {
	var widgets []models.MarketWidget
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("enabled = ?", true).
		Order("position ASC").
		Find(&widgets).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list widgets failed"})
		return
	}

	out := make([]gin.H, 0, len(widgets))
	for _, widget := range widgets {
		out = append(out, gin.H{
			"symbol":      widget.Symbol,
			"displayName": widget.DisplayName,
			"kind":        widget.Kind,
			"position":    widget.Position,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "widgets": out})
}
