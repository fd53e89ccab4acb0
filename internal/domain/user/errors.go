package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailExists        = errors.New("email already registered")
	ErrEmployeeIDExists       = errors.New("employee id already registered")
	ErrInvalidEmailFormat     = errors.New("invalid email format")
	ErrInvalidPasswordLength  = errors.New("password must be at least 8 characters")
	ErrInvalidRole            = errors.New("role must be employee or admin")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
