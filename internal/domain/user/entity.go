package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Manages users and attendance records
	RoleEmployee Role = "employee" // Regular employee
)

type User struct {
	ID                   string
	Name                 string
	Email                string
	EmployeeID           string
	Role                 Role
	PasswordHash         string
	PasswordResetToken   *string
	PasswordResetExpires *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsAdmin checks if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
