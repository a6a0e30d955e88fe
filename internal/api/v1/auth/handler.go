package auth

import (
	"errors"
	"net/http"
	"time"

	"user-management-backend/internal/api/v1/users"
	"user-management-backend/internal/models"
	"user-management-backend/internal/services"
	"user-management-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	users *services.UserService
}

func NewHandler(users *services.UserService) *Handler {
	return &Handler{users: users}
}

type RegisterInput struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	FullName    string  `json:"fullName" binding:"required,min=2,max=255"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Role        *string `json:"role" binding:"omitempty,oneof=admin user"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser is the profile subset returned on login.
type LoginUser struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	User  LoginUser `json:"user"`
	Token string    `json:"token"`
}

// Register godoc
// @Summary Register a new user
// @Description Self-service registration; new accounts get the user role and are active
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "Register Input"
// @Success 201 {object} utils.Response{data=users.UserResponse}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /register [post]
func (h *Handler) Register(c *gin.Context) {
	var input RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	role := ""
	if input.Role != nil {
		role = *input.Role
	}

	u, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Email:       input.Email,
		Password:    input.Password,
		FullName:    input.FullName,
		Phone:       input.Phone,
		Address:     input.Address,
		DateOfBirth: parseDate(input.DateOfBirth),
		Role:        role,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to register user due to an internal error"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("User registered successfully", users.NewUserResponse(u)))
}

// Login godoc
// @Summary Log in a user
// @Description Verify credentials and issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "Login Input"
// @Success 200 {object} utils.Response{data=LoginResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrAccountDisabled) {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
			return
		}
		// Unknown email and wrong password answer identically.
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid email or password"))
		return
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Login successful", LoginResponse{
		User: LoginUser{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
		},
		Token: token,
	}))
}

// Logout godoc
// @Summary Log out a user
// @Description Acknowledge logout; a presented bearer token is revoked for its remaining lifetime
// @Tags auth
// @Produce json
// @Success 200 {object} utils.Response
// @Router /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	// Logout always succeeds; revocation is best effort on whatever
	// token the client presented.
	tokenString, err := utils.ExtractToken(c)
	if err == nil {
		expiration := time.Hour * 72 // max token life
		if claims, err := utils.ValidateToken(tokenString); err == nil {
			if exp, ok := claims["exp"].(float64); ok {
				expiration = time.Until(time.Unix(int64(exp), 0))
			}
		}
		// Revocation failure must not turn logout into an error for
		// the client; the token still expires on its own.
		_ = services.AddToDenylist(tokenString, expiration)
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out successfully", nil))
}

// Me godoc
// @Summary Get current user
// @Description Return the authenticated caller's profile
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response{data=users.UserResponse}
// @Failure 401 {object} utils.Response
// @Router /me [get]
func (h *Handler) Me(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Not authenticated"))
		return
	}

	u := userVal.(models.User)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Authenticated", users.NewUserResponse(&u)))
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
