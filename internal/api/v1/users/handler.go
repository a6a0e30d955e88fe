package users

import (
	"errors"
	"net/http"
	"strconv"

	"user-management-backend/internal/models"
	"user-management-backend/internal/services"
	"user-management-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// maxPageSize bounds the list page size.
const maxPageSize = 100

type Handler struct {
	users *services.UserService
}

func NewHandler(users *services.UserService) *Handler {
	return &Handler{users: users}
}

// ListUsers godoc
// @Summary List users
// @Description Get a paginated list of users, optionally filtered by a search term over email and full name
// @Tags users
// @Produce json
// @Security Bearer
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search term"
// @Success 200 {object} utils.Response{data=UserListResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")
	search := c.Query("search")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	list, total, err := h.users.List(c.Request.Context(), page, limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	items := make([]UserResponse, 0, len(list))
	for i := range list {
		items = append(items, NewUserResponse(&list[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved successfully", UserListResponse{
		Users: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// GetUser godoc
// @Summary Get a user
// @Description Get a single user by ID
// @Tags users
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Success 200 {object} utils.Response{data=UserResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch user"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User retrieved successfully", NewUserResponse(user)))
}

// CreateUser godoc
// @Summary Create a user
// @Description Create a new user (administrative path; may create deactivated accounts)
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param input body CreateUserInput true "User details"
// @Success 201 {object} utils.Response{data=UserResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	role := ""
	if input.Role != nil {
		role = *input.Role
	}

	user, err := h.users.Create(c.Request.Context(), services.CreateInput{
		RegisterInput: services.RegisterInput{
			Email:       input.Email,
			Password:    input.Password,
			FullName:    input.FullName,
			Phone:       input.Phone,
			Address:     input.Address,
			DateOfBirth: parseDate(input.DateOfBirth),
			Role:        role,
		},
		IsActive: input.IsActive,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create user"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("User created successfully", NewUserResponse(user)))
}

// UpdateUser godoc
// @Summary Update a user
// @Description Update the supplied fields of an existing user
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param input body UpdateUserInput true "Fields to update"
// @Success 200 {object} utils.Response{data=UserResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input UpdateUserInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, services.UpdateInput{
		Email:       input.Email,
		Password:    input.Password,
		FullName:    input.FullName,
		Phone:       input.Phone,
		Address:     input.Address,
		DateOfBirth: parseDate(input.DateOfBirth),
		Role:        input.Role,
		IsActive:    input.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update user"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User updated successfully", NewUserResponse(user)))
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Permanently delete a user. Callers cannot delete their own account.
// @Tags users
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	caller, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	callerID := caller.(models.User).ID

	err := h.users.Delete(c.Request.Context(), id, callerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfDelete):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete user"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User deleted successfully", nil))
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return 0, false
	}
	return uint(id), true
}
