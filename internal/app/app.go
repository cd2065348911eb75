package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vendinghive_backend/internal/config"
	"vendinghive_backend/internal/database"
	"vendinghive_backend/internal/email"
	"vendinghive_backend/internal/handlers"
	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/middleware"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/routes"
	"vendinghive_backend/internal/services"
	"vendinghive_backend/internal/services/ai"
	"vendinghive_backend/internal/services/payment"
	"vendinghive_backend/internal/validator"
	"vendinghive_backend/internal/workers"

	"golang.org/x/crypto/bcrypt"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	if err := database.SeedReferenceData(gormDB); err != nil {
		logger.Fatal("Failed to seed reference data", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	startWorkers(context.Background(), gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	serviceContainer := initializeServices(cfg, gormDB)

	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(cfg, gormDB)

	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB) *services.ServiceContainer {
	var emailService email.Provider
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP host is not configured. Outgoing email is mocked.")
		emailService = &MockEmailProvider{}
	} else {
		emailService = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    cfg.Email.UseTLS,
		}, email.NewTemplateManager(), cfg.Frontend.BaseURL)
	}

	userRepo := repositories.NewUserRepository(gormDB)
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB)
	paymentRepo := repositories.NewPaymentRepository(gormDB)
	creditRepo := repositories.NewCreditRepository(gormDB)
	toolkitRepo := repositories.NewAIToolkitRepository(gormDB)
	locationRepo := repositories.NewLocationRepository(gormDB)
	coreRepo := repositories.NewCoreRepository(gormDB)

	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey)
	aiClient := ai.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.PreferredModel)
	if !aiClient.Available() {
		logger.Warn("OpenAI key is not configured. AI Toolkit uses canned templates.")
	}

	authService := services.NewAuthService(userRepo, subscriptionRepo, emailService)
	userService := services.NewUserService(userRepo, subscriptionRepo)
	subscriptionService := services.NewSubscriptionService(userRepo, subscriptionRepo, paymentRepo, creditRepo, gateway, emailService)
	webhookService := services.NewWebhookService(subscriptionRepo, paymentRepo)
	businessToolsService := services.NewBusinessToolsService(userRepo, toolkitRepo)
	scriptGeneratorService := services.NewScriptGeneratorService(userRepo, toolkitRepo, aiClient)
	jarvisService := services.NewJarvisService(userRepo, toolkitRepo, aiClient)
	locatorService := services.NewLocatorService(subscriptionRepo, locationRepo, services.NewSampleLocationProvider())
	weatherService := services.NewWeatherService(cfg.Weather.APIKey)
	coreService := services.NewCoreService(coreRepo)
	adminService := services.NewAdminService(userRepo, subscriptionRepo, paymentRepo, locationRepo, coreRepo)

	return &services.ServiceContainer{
		AuthService:            authService,
		UserService:            userService,
		SubscriptionService:    subscriptionService,
		WebhookService:         webhookService,
		BusinessToolsService:   businessToolsService,
		ScriptGeneratorService: scriptGeneratorService,
		JarvisService:          jarvisService,
		LocatorService:         locatorService,
		WeatherService:         weatherService,
		CoreService:            coreService,
		AdminService:           adminService,
		EmailService:           emailService,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:         handlers.NewUserHandler(baseHandler, services.UserService, services.AuthService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		WebhookHandler:      handlers.NewWebhookHandler(baseHandler, services.WebhookService),
		AIToolkitHandler:    handlers.NewAIToolkitHandler(baseHandler, services.BusinessToolsService, services.ScriptGeneratorService, services.JarvisService),
		LocatorHandler:      handlers.NewLocatorHandler(baseHandler, services.LocatorService),
		CoreHandler:         handlers.NewCoreHandler(baseHandler, services.CoreService, services.WeatherService),
		AdminHandler:        handlers.NewAdminHandler(baseHandler, services.AdminService, services.CoreService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())

	var origins []string
	if cfg.Frontend.BaseURL != "" {
		origins = append(origins, cfg.Frontend.BaseURL)
	}
	router.Use(middleware.CORSMiddleware(origins))

	router.Use(middleware.DBMiddleware(db))
	return router
}

func startWorkers(ctx context.Context, gormDB *gorm.DB) {
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB)
	userRepo := repositories.NewUserRepository(gormDB)
	creditRepo := repositories.NewCreditRepository(gormDB)

	workers.NewSubscriptionWorker(subscriptionRepo).Start(ctx)
	workers.NewCleanupWorker(userRepo, creditRepo).Start(ctx)
	logger.Info("Background workers started")
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.Admin.Email
	adminPassword := cfg.Admin.Password

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Email:        adminEmail,
		Username:     "admin",
		FirstName:    "Site",
		LastName:     "Admin",
		PasswordHash: string(hash),
		Role:         models.UserRoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("First admin user created", "email", adminEmail)
	return nil
}
