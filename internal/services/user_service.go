package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type CreateUserRequest struct {
	ID       string          `json:"id"` // external identity ID; generated when empty
	FullName string          `json:"full_name" validate:"required,min=1,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`

	// Student fields
	Grade   *int    `json:"grade" validate:"omitempty,min=1,max=13"`
	ClassID *string `json:"class_id"`

	// Teacher fields
	Subject *string `json:"subject"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active"`
	Grade    *int    `json:"grade" validate:"omitempty,min=1,max=13"`
	ClassID  *string `json:"class_id"`
}

// UserService provisions accounts and their role profiles. A student gets a
// StudentProfile row at creation; the ledger only ever touches that row.
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error)
	UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*models.User, error)
	DeactivateUser(ctx context.Context, id string) error
}

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) UserService {
	return &userService{repo: repo, logger: logger, validator: validator}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Role == models.RoleStudent && req.Grade == nil {
		return nil, NewValidationError("grade", "is required for students", nil)
	}

	user := &models.User{
		ID:       req.ID,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: true,
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	switch req.Role {
	case models.RoleStudent:
		user.Student = &models.StudentProfile{
			UserID:  user.ID,
			Grade:   *req.Grade,
			ClassID: req.ClassID,
		}
	case models.RoleTeacher:
		user.Teacher = &models.TeacherProfile{UserID: user.ID}
		if req.Subject != nil {
			user.Teacher.Subject = *req.Subject
		}
	}

	if err := s.repo.Users().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role, "email", user.Email)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return s.repo.Users().List(ctx, filters)
}

func (s *userService) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.repo.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if user.Role == models.RoleStudent && (req.Grade != nil || req.ClassID != nil) {
		profile, err := s.repo.Users().GetStudent(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get student profile: %w", err)
		}
		if req.Grade != nil {
			profile.Grade = *req.Grade
		}
		if req.ClassID != nil {
			profile.ClassID = req.ClassID
		}
		if err := s.repo.Users().UpdateStudent(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to update student profile: %w", err)
		}
		user.Student = profile
	}

	s.logger.Info("User updated", "user_id", id)
	return user, nil
}

func (s *userService) DeactivateUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := s.repo.Users().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	s.logger.Info("User deactivated", "user_id", id)
	return nil
}
