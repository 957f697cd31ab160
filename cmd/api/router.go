package api

import (
	"net/http"

	accountDelivery "newsbox-backend/internal/account/delivery"
	accountUsecasePkg "newsbox-backend/internal/account/usecase"
	"newsbox-backend/internal/auth/delivery"
	authUsecasePkg "newsbox-backend/internal/auth/usecase"
	newsletterDelivery "newsbox-backend/internal/newsletter/delivery"
	newsletterUsecasePkg "newsbox-backend/internal/newsletter/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUsecase authUsecasePkg.AuthUsecase,
	accountUsecase accountUsecasePkg.AccountUsecase,
	newsletterUsecase newsletterUsecasePkg.NewsletterUsecase,
	syncUsecase newsletterUsecasePkg.SyncUsecase,
) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	accountHandler := accountDelivery.NewAccountHandler(accountUsecase)
	newsletterHandler := newsletterDelivery.NewNewsletterHandler(newsletterUsecase)
	settingsHandler := newsletterDelivery.NewSettingsHandler(newsletterUsecase)
	syncHandler := newsletterDelivery.NewSyncHandler(syncUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// Account routes (protected except the provider redirect)
		accounts := api.Group("/accounts")
		{
			accounts.GET("/callback", accountHandler.Callback)

			protected := accounts.Group("")
			protected.Use(delivery.AuthMiddleware(authUsecase))
			{
				protected.GET("", accountHandler.List)
				protected.POST("/connect/:provider", accountHandler.Connect)
				protected.DELETE("/:id", accountHandler.Disconnect)
				protected.PATCH("/:id/sync-settings", accountHandler.UpdateSyncSettings)
			}
		}

		// Sync routes (protected)
		syncRoutes := api.Group("/sync")
		syncRoutes.Use(delivery.AuthMiddleware(authUsecase))
		{
			syncRoutes.GET("/preview", syncHandler.Preview)
			syncRoutes.POST("/import", syncHandler.Import)
			syncRoutes.POST("/run", syncHandler.Run)
			syncRoutes.GET("/progress", syncHandler.Progress)
		}

		// Newsletter routes (protected)
		newsletters := api.Group("/newsletters")
		newsletters.Use(delivery.AuthMiddleware(authUsecase))
		{
			newsletters.GET("", newsletterHandler.List)
			newsletters.GET("/search", newsletterHandler.Search)
			newsletters.GET("/:id", newsletterHandler.GetByID)
			newsletters.PATCH("/:id", newsletterHandler.Update)
			newsletters.PATCH("/:id/read", newsletterHandler.MarkAsRead)
			newsletters.PATCH("/:id/unread", newsletterHandler.MarkAsUnread)
			newsletters.PATCH("/:id/star", newsletterHandler.ToggleStar)
			newsletters.POST("/:id/archive", newsletterHandler.Archive)
			newsletters.POST("/:id/unarchive", newsletterHandler.Unarchive)
			newsletters.POST("/:id/apply-rules", newsletterHandler.ApplyRules)
			newsletters.DELETE("/:id", newsletterHandler.Delete)
		}

		// Whitelist routes (protected)
		whitelist := api.Group("/whitelist")
		whitelist.Use(delivery.AuthMiddleware(authUsecase))
		{
			whitelist.GET("", settingsHandler.ListWhitelist)
			whitelist.POST("", settingsHandler.AddWhitelist)
			whitelist.DELETE("/:email", settingsHandler.RemoveWhitelist)
		}

		// Rule routes (protected)
		rules := api.Group("/rules")
		rules.Use(delivery.AuthMiddleware(authUsecase))
		{
			rules.GET("", settingsHandler.ListRules)
			rules.POST("", settingsHandler.CreateRule)
			rules.PUT("/:id", settingsHandler.UpdateRule)
			rules.DELETE("/:id", settingsHandler.DeleteRule)
		}

		// Category routes (protected)
		categories := api.Group("/categories")
		categories.Use(delivery.AuthMiddleware(authUsecase))
		{
			categories.GET("", settingsHandler.ListCategories)
			categories.POST("", settingsHandler.CreateCategory)
			categories.DELETE("/:id", settingsHandler.DeleteCategory)
		}
	}
}
