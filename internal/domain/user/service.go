package user

import (
	"context"
)

type Service interface {
	ListUsers(ctx context.Context) (ListUsersResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}
