package api

import (
	accountUsecasePkg "newsbox-backend/internal/account/usecase"
	authUsecasePkg "newsbox-backend/internal/auth/usecase"
	newsletterUsecasePkg "newsbox-backend/internal/newsletter/usecase"
	"newsbox-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase       authUsecasePkg.AuthUsecase
	accountUsecase    accountUsecasePkg.AccountUsecase
	newsletterUsecase newsletterUsecasePkg.NewsletterUsecase
	syncUsecase       newsletterUsecasePkg.SyncUsecase
	config            *config.Config
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	accountUc accountUsecasePkg.AccountUsecase,
	newsletterUc newsletterUsecasePkg.NewsletterUsecase,
	syncUc newsletterUsecasePkg.SyncUsecase,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:       authUc,
		accountUsecase:    accountUc,
		newsletterUsecase: newsletterUc,
		syncUsecase:       syncUc,
		config:            cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.accountUsecase, h.newsletterUsecase, h.syncUsecase)

	return r.Run(addr)
}
