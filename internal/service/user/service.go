package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/attendly-hq/attendance-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

type ServiceImpl struct {
	user.Repository
}

func NewUserService(repo user.Repository) user.Service {
	return &ServiceImpl{Repository: repo}
}

func (s *ServiceImpl) ListUsers(ctx context.Context) (user.ListUsersResponse, error) {
	users, total, err := s.Repository.List(ctx)
	if err != nil {
		return user.ListUsersResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	resp := user.ListUsersResponse{
		TotalCount: total,
		Users:      make([]user.UserResponse, 0, len(users)),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, mapUserToResponse(u))
	}
	return resp, nil
}

func (s *ServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	emailTaken, employeeIDTaken, err := s.Repository.ExistsByEmailOrEmployeeID(ctx, req.Email, req.EmployeeID)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to check existing users: %w", err)
	}
	if emailTaken {
		return user.UserResponse{}, user.ErrUserEmailExists
	}
	if employeeIDTaken {
		return user.UserResponse{}, user.ErrEmployeeIDExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.Repository.Create(ctx, user.User{
		Name:         req.Name,
		Email:        req.Email,
		EmployeeID:   req.EmployeeID,
		Role:         user.Role(strings.ToLower(req.Role)),
		PasswordHash: string(hash),
	})
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return mapUserToResponse(created), nil
}

func (s *ServiceImpl) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	existing, err := s.Repository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.Email != nil && *req.Email != existing.Email {
		emailTaken, _, err := s.Repository.ExistsByEmailOrEmployeeID(ctx, *req.Email, "")
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to check existing users: %w", err)
		}
		if emailTaken {
			return user.UserResponse{}, user.ErrUserEmailExists
		}
		existing.Email = *req.Email
	}
	if req.EmployeeID != nil && *req.EmployeeID != existing.EmployeeID {
		_, employeeIDTaken, err := s.Repository.ExistsByEmailOrEmployeeID(ctx, "", *req.EmployeeID)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to check existing users: %w", err)
		}
		if employeeIDTaken {
			return user.UserResponse{}, user.ErrEmployeeIDExists
		}
		existing.EmployeeID = *req.EmployeeID
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Role != nil {
		existing.Role = user.Role(strings.ToLower(*req.Role))
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	if err := s.Repository.Update(ctx, existing); err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to update user: %w", err)
	}

	return mapUserToResponse(existing), nil
}

func (s *ServiceImpl) DeleteUser(ctx context.Context, id string) error {
	return s.Repository.Delete(ctx, id)
}

func mapUserToResponse(u user.User) user.UserResponse {
	return user.UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
