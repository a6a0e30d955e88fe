package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"user-management-backend/internal/database"
	"user-management-backend/internal/models"
	"user-management-backend/internal/repository"
	"user-management-backend/internal/services"
	"user-management-backend/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMockRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		database.RedisClient = nil
		mr.Close()
	})
	return mr
}

func setupUserService(t *testing.T) *services.UserService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Migrator().DropTable(&models.User{})
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return services.NewUserService(repository.NewUserRepository(db), services.NewBcryptHasher())
}

func TestAuthMiddleware(t *testing.T) {
	os.Setenv("JWT_SECRET", "test_secret")
	setupMockRedis(t)
	gin.SetMode(gin.TestMode)

	svc := setupUserService(t)
	seeded, err := svc.Register(context.Background(), services.RegisterInput{
		Email:    "ann@x.com",
		Password: "longenough1",
		FullName: "Ann Lee",
	})
	assert.NoError(t, err)

	generateTestToken := func(userID uint, expired bool) string {
		claims := jwt.MapClaims{
			"user_id": userID,
			"role":    "user",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}
		if expired {
			claims["exp"] = time.Now().Add(-time.Hour).Unix()
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tString, _ := token.SignedString([]byte("test_secret"))
		return tString
	}

	revokedToken := generateTestToken(seeded.ID, false)
	assert.NoError(t, services.AddToDenylist(revokedToken, time.Hour))

	router := gin.New()
	router.GET("/protected", AuthMiddleware(svc), func(c *gin.Context) {
		user := c.MustGet("user").(models.User)
		c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", user.Email))
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing Authorization Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "authorization header is required",
		},
		{
			name:           "Invalid Token Format",
			authHeader:     "InvalidToken",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "bearer token not found",
		},
		{
			name:           "Invalid Token Signature",
			authHeader:     "Bearer invalid.token.signature",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid or expired token",
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + generateTestToken(seeded.ID, true),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid or expired token",
		},
		{
			name:           "Revoked Token",
			authHeader:     "Bearer " + revokedToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "revoked",
		},
		{
			name:           "Token For Missing User",
			authHeader:     "Bearer " + generateTestToken(999, false),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "User not found",
		},
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + generateTestToken(seeded.ID, false),
			expectedStatus: http.StatusOK,
			expectedBody:   "ann@x.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
