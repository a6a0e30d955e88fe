package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"user-management-backend/internal/api/v1/auth"
	"user-management-backend/internal/database"
	"user-management-backend/internal/middleware"
	"user-management-backend/internal/models"
	"user-management-backend/internal/repository"
	"user-management-backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *services.UserService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test_secret")

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Migrator().DropTable(&models.User{})
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	svc := services.NewUserService(repository.NewUserRepository(db), services.NewBcryptHasher())

	router := gin.New()
	api := router.Group("/api")
	auth.RegisterRoutes(api, auth.NewHandler(svc), middleware.AuthMiddleware(svc))

	return router, svc
}

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

func doRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine, email string) {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/register", map[string]interface{}{
		"email":    email,
		"password": "longenough1",
		"fullName": "Ann Lee",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("registration of %s failed: %d %s", email, w.Code, w.Body.String())
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name: "Success With Defaults",
			body: map[string]interface{}{
				"email":    "a@x.com",
				"password": "longenough1",
				"fullName": "Ann Lee",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, body []byte) {
				var resp struct {
					Message string `json:"message"`
					Data    struct {
						Email    string `json:"email"`
						Role     string `json:"role"`
						IsActive bool   `json:"isActive"`
					} `json:"data"`
				}
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "User registered successfully", resp.Message)
				assert.Equal(t, "a@x.com", resp.Data.Email)
				assert.Equal(t, "user", resp.Data.Role)
				assert.True(t, resp.Data.IsActive)
				assert.False(t, strings.Contains(string(body), `"password"`))
			},
		},
		{
			name: "Optional Profile Fields",
			body: map[string]interface{}{
				"email":       "b@x.com",
				"password":    "longenough1",
				"fullName":    "Bob Stone",
				"phone":       "0123456789",
				"address":     "123 Main Street",
				"dateOfBirth": "1990-05-17",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, body []byte) {
				var resp struct {
					Data struct {
						Phone       *string `json:"phone"`
						DateOfBirth *string `json:"dateOfBirth"`
					} `json:"data"`
				}
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.NotNil(t, resp.Data.Phone)
				assert.NotNil(t, resp.Data.DateOfBirth)
				assert.Equal(t, "1990-05-17", *resp.Data.DateOfBirth)
			},
		},
		{
			name: "Invalid Email",
			body: map[string]interface{}{
				"email":    "nope",
				"password": "longenough1",
				"fullName": "Ann Lee",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Short Password",
			body: map[string]interface{}{
				"email":    "c@x.com",
				"password": "seven77",
				"fullName": "Ann Lee",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Date Of Birth",
			body: map[string]interface{}{
				"email":       "d@x.com",
				"password":    "longenough1",
				"fullName":    "Ann Lee",
				"dateOfBirth": "17/05/1990",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupRouter(t)
			w := doRequest(router, http.MethodPost, "/api/register", tt.body, "")
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w.Body.Bytes())
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := setupRouter(t)
	register(t, router, "dup@x.com")

	w := doRequest(router, http.MethodPost, "/api/register", map[string]interface{}{
		"email":    "dup@x.com",
		"password": "longenough1",
		"fullName": "Second Ann",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	router, svc := setupRouter(t)
	register(t, router, "ann@x.com")

	t.Run("Success", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/login", map[string]interface{}{
			"email":    "ann@x.com",
			"password": "longenough1",
		}, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data auth.LoginResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ann@x.com", resp.Data.User.Email)
		assert.Equal(t, "Ann Lee", resp.Data.User.FullName)
		assert.Equal(t, "user", resp.Data.User.Role)
		assert.NotEmpty(t, resp.Data.Token)
	})

	t.Run("Wrong Password And Unknown Email Are Indistinguishable", func(t *testing.T) {
		wrongPw := doRequest(router, http.MethodPost, "/api/login", map[string]interface{}{
			"email":    "ann@x.com",
			"password": "wrongpassword",
		}, "")
		unknown := doRequest(router, http.MethodPost, "/api/login", map[string]interface{}{
			"email":    "ghost@x.com",
			"password": "whatever123",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	})

	t.Run("Deactivated Account", func(t *testing.T) {
		inactive := false
		_, err := svc.Create(context.Background(), services.CreateInput{
			RegisterInput: services.RegisterInput{
				Email:    "sleepy@x.com",
				Password: "longenough1",
				FullName: "Sleepy User",
			},
			IsActive: &inactive,
		})
		assert.NoError(t, err)

		w := doRequest(router, http.MethodPost, "/api/login", map[string]interface{}{
			"email":    "sleepy@x.com",
			"password": "longenough1",
		}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, w.Body.String(), "Invalid email or password")
	})
}

func TestMe(t *testing.T) {
	router, _ := setupRouter(t)
	register(t, router, "ann@x.com")

	w := doRequest(router, http.MethodPost, "/api/login", map[string]interface{}{
		"email":    "ann@x.com",
		"password": "longenough1",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Data auth.LoginResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	t.Run("Authenticated", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/me", nil, login.Data.Token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ann@x.com")
		assert.NotContains(t, w.Body.String(), `"password"`)
	})

	t.Run("No Token", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLogout(t *testing.T) {
	router, _ := setupRouter(t)
	setupMockRedis(t)
	register(t, router, "ann@x.com")

	w := doRequest(router, http.MethodPost, "/api/login", map[string]interface{}{
		"email":    "ann@x.com",
		"password": "longenough1",
	}, "")
	var login struct {
		Data auth.LoginResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	t.Run("Without Token Still Acknowledged", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/logout", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Revokes Presented Token", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/logout", nil, login.Data.Token)
		assert.Equal(t, http.StatusOK, w.Code)

		// The revoked token no longer passes the auth gate.
		w = doRequest(router, http.MethodGet, "/api/me", nil, login.Data.Token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	})
}
