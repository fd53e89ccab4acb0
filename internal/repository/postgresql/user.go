package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attendly-hq/attendance-backend-go/internal/domain/user"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.Repository {
	return &userRepository{db: db}
}

const userColumns = `
	id, name, email, employee_id, role, password_hash,
	password_reset_token, password_reset_expires, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.EmployeeID, &u.Role, &u.PasswordHash,
		&u.PasswordResetToken, &u.PasswordResetExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *userRepository) getBy(ctx context.Context, condition string, arg interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + userColumns + `
		FROM users
		WHERE ` + condition

	u, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *userRepository) GetByEmployeeID(ctx context.Context, employeeID string) (user.User, error) {
	return r.getBy(ctx, "employee_id = $1", employeeID)
}

func (r *userRepository) GetByResetToken(ctx context.Context, tokenHash string) (user.User, error) {
	return r.getBy(ctx, "password_reset_token = $1", tokenHash)
}

func (r *userRepository) ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE email = $1),
			EXISTS (SELECT 1 FROM users WHERE employee_id = $2)
	`

	var emailTaken, employeeIDTaken bool
	if err := q.QueryRow(ctx, query, email, employeeID).Scan(&emailTaken, &employeeIDTaken); err != nil {
		return false, false, fmt.Errorf("failed to check existing users: %w", err)
	}

	return emailTaken, employeeIDTaken, nil
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (name, email, employee_id, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newUser.Name,
		newUser.Email,
		newUser.EmployeeID,
		newUser.Role,
		newUser.PasswordHash,
	).Scan(&newUser.ID, &newUser.CreatedAt, &newUser.UpdatedAt)

	if err != nil {
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

func (r *userRepository) Update(ctx context.Context, updated user.User) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = $2,
			email = $3,
			employee_id = $4,
			role = $5,
			password_hash = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		updated.ID,
		updated.Name,
		updated.Email,
		updated.EmployeeID,
		updated.Role,
		updated.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) SetResetToken(ctx context.Context, id string, tokenHash *string, expiresAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users
		SET password_reset_token = $2, password_reset_expires = $3, updated_at = NOW()
		WHERE id = $1
	`, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) List(ctx context.Context) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT` + userColumns + `
		FROM users
		ORDER BY created_at ASC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read users: %w", err)
	}

	return users, total, nil
}
