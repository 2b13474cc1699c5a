// Package api registers the HTTP surface: auth, chats, insights,
// dashboard, documents, and the cookie-driven route guard.
package api

import (
	"net/http"

	"github.com/finbot-app/finbot/internal/analysis"
	"github.com/finbot-app/finbot/internal/auth"
	"github.com/finbot-app/finbot/internal/chat"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps aggregates everything the routes need.
type Deps struct {
	DB       *gorm.DB
	Auth     *auth.Service
	Chat     *chat.Service
	Analysis *analysis.Client

	Cookies        CookieConfig
	MaxUploadBytes int64
}

// RegisterRoutes wires middleware, handlers, and the guard onto the
// engine.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	healthHandler := NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	r.Use(sessionMiddleware(deps.Auth.Sessions()))

	authGroup := r.Group("/v0/auth")
	authHandler := NewAuthHandler(deps.Auth, deps.Cookies)
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/verify", authHandler.Verify)
	authGroup.POST("/resend-code", authHandler.ResendCode)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/password/forgot", authHandler.ForgotPassword)
	authGroup.POST("/password/verify-code", authHandler.VerifyResetCode)
	authGroup.POST("/password/reset", authHandler.ResetPassword)

	authed := r.Group("/v0")
	authed.Use(requireSession())

	chatHandler := NewChatHandler(deps.Chat)
	authed.POST("/chats", chatHandler.Save)
	authed.GET("/chats", chatHandler.List)
	authed.GET("/chats/:id", chatHandler.Get)
	authed.DELETE("/chats/:id", chatHandler.Delete)
	authed.GET("/insights/frequent", chatHandler.FrequentQueries)
	authed.GET("/insights/suggestions", chatHandler.Suggestions)

	profileHandler := NewProfileHandler(deps.Auth)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile/preferences", profileHandler.UpdatePreferences)

	dashboardHandler := NewDashboardHandler(deps.DB)
	authed.GET("/dashboard/news", dashboardHandler.News)
	authed.GET("/dashboard/widgets", dashboardHandler.Widgets)

	documentHandler := NewDocumentHandler(deps.Analysis, deps.MaxUploadBytes)
	authed.POST("/documents/analyze", documentHandler.Analyze)

	pages := r.Group("")
	pages.Use(GuardMiddleware(deps.Cookies.Secret))
	for _, page := range []string{PageLogin, PageSignup, PageForgotPassword, PageVerify, PageApp} {
		pages.GET(page, servePage)
	}
}

// servePage is the placeholder for the SPA entry point; the real UI is
// served by the frontend deployment, this route only exists so the
// guard's redirects resolve during local development.
func servePage(c *gin.Context) {
	c.Status(http.StatusOK)
}
