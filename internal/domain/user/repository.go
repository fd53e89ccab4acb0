package user

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (User, error)
	ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (emailTaken, employeeIDTaken bool, err error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, updated User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id string, tokenHash *string, expiresAt *time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, int64, error)
}
