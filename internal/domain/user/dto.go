package user

import (
	"strings"

	"github.com/attendly-hq/attendance-backend-go/internal/pkg/validator"
)

type CreateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if r.Role == "" {
		r.Role = string(RoleEmployee)
	}
	if !validator.IsInSlice(strings.ToLower(r.Role), []string{string(RoleEmployee), string(RoleAdmin)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateUserRequest updates any subset of user fields; a supplied
// password is rehashed before storage.
type UpdateUserRequest struct {
	ID         string  `json:"-"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Role       *string `json:"role,omitempty"`
	Password   *string `json:"password,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if r.Role != nil && !validator.IsInSlice(strings.ToLower(*r.Role), []string{string(RoleEmployee), string(RoleAdmin)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: employee, admin",
		})
	}

	if r.Password != nil && len(*r.Password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type ListUsersResponse struct {
	TotalCount int64          `json:"total_count"`
	Users      []UserResponse `json:"users"`
}
