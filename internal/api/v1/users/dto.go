package users

import (
	"time"

	"user-management-backend/internal/models"
)

const dateLayout = "2006-01-02"

// UserResponse defines the response structure for user information.
// The credential hash never appears here.
type UserResponse struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	DateOfBirth *string   `json:"dateOfBirth"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewUserResponse maps a stored user to its API representation.
func NewUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}

// UserListResponse is the paginated list payload.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// CreateUserInput is the administrative creation body. Unlike
// registration it accepts isActive.
type CreateUserInput struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	FullName    string  `json:"fullName" binding:"required,min=2,max=255"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Role        *string `json:"role" binding:"omitempty,oneof=admin user"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateUserInput is the partial update body; absent fields are left
// unchanged.
type UpdateUserInput struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
	FullName    *string `json:"fullName" binding:"omitempty,min=2,max=255"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Role        *string `json:"role" binding:"omitempty,oneof=admin user"`
	IsActive    *bool   `json:"isActive"`
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
