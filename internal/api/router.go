package api

import (
	"net/http"
	"time"

	"user-management-backend/config"
	_ "user-management-backend/docs"
	"user-management-backend/internal/api/v1/auth"
	"user-management-backend/internal/api/v1/users"
	"user-management-backend/internal/database"
	"user-management-backend/internal/middleware"
	"user-management-backend/internal/repository"
	"user-management-backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	userService := services.NewUserService(
		repository.NewUserRepository(db),
		services.NewBcryptHasher(),
	)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:13000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           2 * time.Hour,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Liveness probe for container healthchecks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	authRequired := middleware.AuthMiddleware(userService)

	api := router.Group("/api")
	{
		auth.RegisterRoutes(api, auth.NewHandler(userService), authRequired)

		authorized := api.Group("/")
		authorized.Use(authRequired)
		{
			users.RegisterRoutes(authorized, users.NewHandler(userService))
		}
	}

	return router, nil
}
