package main

import (
	"log"

	api "newsbox-backend/cmd/api"
	accountdomain "newsbox-backend/internal/account/domain"
	accountRepo "newsbox-backend/internal/account/repository"
	accountUsecase "newsbox-backend/internal/account/usecase"
	authdomain "newsbox-backend/internal/auth/domain"
	authRepo "newsbox-backend/internal/auth/repository"
	authUsecase "newsbox-backend/internal/auth/usecase"
	newsletterdomain "newsbox-backend/internal/newsletter/domain"
	newsletterRepo "newsbox-backend/internal/newsletter/repository"
	"newsbox-backend/internal/newsletter/scheduler"
	newsletterUsecase "newsbox-backend/internal/newsletter/usecase"
	"newsbox-backend/pkg/cache"
	"newsbox-backend/pkg/config"
	"newsbox-backend/pkg/database"
	"newsbox-backend/pkg/provider"
	"newsbox-backend/pkg/provider/gmail"
	"newsbox-backend/pkg/provider/outlook"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&accountdomain.EmailAccount{},
		&newsletterdomain.Newsletter{},
		&newsletterdomain.WhitelistEntry{},
		&newsletterdomain.Rule{},
		&newsletterdomain.Category{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	accountRepository := accountRepo.NewAccountRepository(db)
	newsletterRepository := newsletterRepo.NewNewsletterRepository(db)
	whitelistRepository := newsletterRepo.NewWhitelistRepository(db)
	ruleRepository := newsletterRepo.NewRuleRepository(db)
	categoryRepository := newsletterRepo.NewCategoryRepository(db)

	// Initialize provider clients
	providers := provider.NewRegistry(
		gmail.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI),
		outlook.New(cfg.MicrosoftClientID, cfg.MicrosoftClientSecret, cfg.MicrosoftRedirectURI),
	)

	// Shared in-memory cache for oauth state and sync progress
	memCache := cache.NewMemoryCache()
	defer memCache.Close()

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	accountUsecaseInstance := accountUsecase.NewAccountUsecase(accountRepository, newsletterRepository, providers, memCache)
	ruleEngine := newsletterUsecase.NewRuleEngine(ruleRepository, newsletterRepository)
	newsletterUsecaseInstance := newsletterUsecase.NewNewsletterUsecase(newsletterRepository, whitelistRepository, ruleRepository, categoryRepository, ruleEngine)
	syncUsecaseInstance := newsletterUsecase.NewSyncUsecase(accountRepository, newsletterRepository, whitelistRepository, ruleRepository, providers, ruleEngine, memCache, cfg)

	// Start the background sync scheduler
	syncScheduler := scheduler.NewSyncScheduler(syncUsecaseInstance, newsletterRepository)
	syncScheduler.Start()
	defer syncScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, accountUsecaseInstance, newsletterUsecaseInstance, syncUsecaseInstance, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
