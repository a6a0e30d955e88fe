package services

import (
	"context"
	"errors"
	"time"

	"user-management-backend/internal/models"
	"user-management-backend/internal/repository"

	"gorm.io/gorm"
)

// UserService enforces the account rules: unique email, hashed
// credentials, active-status gating on login, and the self-deletion
// guard. It is stateless between calls; all persistence goes through
// the injected repository.
type UserService struct {
	repo   repository.UserRepository
	hasher PasswordHasher
}

func NewUserService(repo repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// RegisterInput carries the validated fields of a registration request.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
	Role        string
}

// CreateInput is the administrative creation payload. It extends
// registration with an explicit active flag.
type CreateInput struct {
	RegisterInput
	IsActive *bool
}

// UpdateInput carries a partial update; nil means leave unchanged.
type UpdateInput struct {
	Email       *string
	Password    *string
	FullName    *string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
	Role        *string
	IsActive    *bool
}

// Register creates an account from a self-service registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, CreateInput{RegisterInput: in})
}

// Create is the administrative creation path; unlike Register it may
// create an already-deactivated account.
func (s *UserService) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	return s.createUser(ctx, in)
}

func (s *UserService) createUser(ctx context.Context, in CreateInput) (*models.User, error) {
	taken, err := s.repo.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	user := &models.User{
		Email:       in.Email,
		Password:    hashed,
		FullName:    in.FullName,
		Phone:       in.Phone,
		Address:     in.Address,
		DateOfBirth: in.DateOfBirth,
		Role:        role,
		IsActive:    isActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// The pre-check above can race with a concurrent registration;
		// the unique index on email is the authoritative guard.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// Authenticate verifies the credentials and that the account is active.
// Unknown email and wrong password produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

// List returns one page of users and the total match count. The search
// term filters on email or full name, case-insensitively.
func (s *UserService) List(ctx context.Context, page, limit int, search string) ([]models.User, int64, error) {
	return s.repo.Search(ctx, search, page, limit)
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update applies the supplied fields only. A changed email is re-checked
// for uniqueness excluding the record itself.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateInput) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.Email != nil && *in.Email != user.Email {
		taken, err := s.repo.EmailTaken(ctx, *in.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *in.Email
	}

	if in.Password != nil {
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.Phone != nil {
		user.Phone = in.Phone
	}
	if in.Address != nil {
		user.Address = in.Address
	}
	if in.DateOfBirth != nil {
		user.DateOfBirth = in.DateOfBirth
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// Delete permanently removes the account. Callers may not delete
// themselves, regardless of role.
func (s *UserService) Delete(ctx context.Context, id, callerID uint) error {
	if id == callerID {
		return ErrSelfDelete
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}
