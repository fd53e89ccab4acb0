package response

import (
	"errors"
	"net/http"

	"github.com/attendly-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly-hq/attendance-backend-go/internal/domain/auth"
	"github.com/attendly-hq/attendance-backend-go/internal/domain/user"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Employee already has an active shift")
	case errors.Is(err, attendance.ErrNoActiveShift):
		Conflict(w, "Employee has no active shift")
	case errors.Is(err, attendance.ErrBreakAlreadyStarted):
		Conflict(w, "Break already started for this shift")
	case errors.Is(err, attendance.ErrNoBreakStarted):
		Conflict(w, "No break in progress for this shift")
	case errors.Is(err, attendance.ErrInvalidRange):
		BadRequest(w, "Check-out must be after check-in", nil)
	case errors.Is(err, attendance.ErrInvalidBreakRange):
		BadRequest(w, "Break must fall within the shift", nil)

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrResetTokenExpired):
		Unauthorized(w, "Reset token expired")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrEmployeeIDExists):
		Conflict(w, "Employee ID already registered")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
