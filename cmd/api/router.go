package api

import (
	"net/http"

	"tempmail-backend/internal/auth/delivery"
	emailDelivery "tempmail-backend/internal/email/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := delivery.NewAuthHandler(h.authUsecase)
	emailHandler := emailDelivery.NewEmailHandler(h.emailUsecase, h.recentUsecase)
	recentHandler := emailDelivery.NewRecentHandler(h.recentUsecase)
	setupHandler := emailDelivery.NewSetupHandler(h.setupUsecase, h.config.FrontendURL)
	settingsHandler := NewSettingsHandler(h.emailUsecase)

	requireAuth := delivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.GET("/settings", settingsHandler.GetSettings)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// Inbox routes (protected)
		inboxes := api.Group("/inboxes")
		inboxes.Use(requireAuth)
		{
			inboxes.GET("/:address/emails", emailHandler.GetInboxEmails)
			inboxes.GET("/:address/emails/:id", emailHandler.GetEmail)
			inboxes.GET("/:address/count", emailHandler.CountInboxEmails)
		}

		emails := api.Group("/emails")
		emails.Use(requireAuth)
		{
			emails.PATCH("/:id/read", emailHandler.MarkAsRead)
			emails.PATCH("/:id/unread", emailHandler.MarkAsUnread)
		}

		recent := api.Group("/recent")
		recent.Use(requireAuth)
		{
			recent.GET("", recentHandler.List)
			recent.DELETE("", recentHandler.Clear)
			recent.DELETE("/:address", recentHandler.Remove)
		}

		// Google redirects the browser here without our bearer token
		api.GET("/gmail/callback", setupHandler.Callback)

		gmail := api.Group("/gmail")
		gmail.Use(requireAuth)
		{
			gmail.GET("/status", setupHandler.Status)
			gmail.GET("/auth-url", setupHandler.AuthURL)
			gmail.POST("/exchange", setupHandler.Exchange)
			gmail.DELETE("", setupHandler.Disconnect)
		}
	}
}
