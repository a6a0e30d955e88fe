package main

import (
	"errors"
	"log"

	"user-management-backend/config"
	"user-management-backend/internal/api"
	"user-management-backend/internal/database"
	"user-management-backend/internal/models"
	"user-management-backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// @title user-management-backend API
// @version 1.0
// @description REST backend for user registration, authentication and user management.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	if err := database.DB.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	seedAdminUser(cfg)

	if err := router.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// seedAdminUser makes sure the configured admin account exists. It is
// idempotent: an existing account with the admin email is left alone.
func seedAdminUser(cfg *config.Config) {
	var admin models.User
	result := database.DB.Where("email = ?", cfg.AdminEmail).First(&admin)
	if result.Error == nil {
		return
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to look up admin user: %v", result.Error)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	admin = models.User{
		Email:    cfg.AdminEmail,
		Password: string(hashedPassword),
		FullName: "Admin User",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	logger.Log.Info("admin user seeded")
}
