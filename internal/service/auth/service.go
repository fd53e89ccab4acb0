package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly-hq/attendance-backend-go/internal/domain/auth"
	"github.com/attendly-hq/attendance-backend-go/internal/domain/user"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/email"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 10 * time.Minute

type ServiceImpl struct {
	user.Repository
	jwt.Service
	email       email.EmailService
	frontendURL string
}

func NewAuthService(userRepository user.Repository, jwtService jwt.Service, emailService email.EmailService, frontendURL string) auth.Service {
	return &ServiceImpl{
		Repository:  userRepository,
		Service:     jwtService,
		email:       emailService,
		frontendURL: frontendURL,
	}
}

func (a *ServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Signup registers a new employee account. Email and employee id must
// both be unused.
func (a *ServiceImpl) Signup(ctx context.Context, req auth.SignupRequest) (auth.SignupResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.SignupResponse{}, err
	}

	emailTaken, employeeIDTaken, err := a.Repository.ExistsByEmailOrEmployeeID(ctx, req.Email, req.EmployeeID)
	if err != nil {
		return auth.SignupResponse{}, fmt.Errorf("failed to check existing users: %w", err)
	}
	if emailTaken {
		return auth.SignupResponse{}, user.ErrUserEmailExists
	}
	if employeeIDTaken {
		return auth.SignupResponse{}, user.ErrEmployeeIDExists
	}

	passwordHash, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.SignupResponse{}, err
	}

	created, err := a.Repository.Create(ctx, user.User{
		Name:         req.Name,
		Email:        req.Email,
		EmployeeID:   req.EmployeeID,
		Role:         user.RoleEmployee,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return auth.SignupResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return auth.SignupResponse{UserID: created.ID}, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (a *ServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.Repository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	var tokenResponse auth.TokenResponse
	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.EmployeeID, userData.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(userData.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return tokenResponse, nil
}

// RefreshToken exchanges a valid, unrevoked refresh token for a new
// access token.
func (a *ServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	token, err := jwtauth.VerifyToken(a.Service.JWTAuth(), req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	if a.Service.IsTokenRevoked(req.RefreshToken) {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	userData, err := a.Repository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.EmployeeID, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return resp, nil
}

// ForgotPassword issues a single-use reset token and mails a reset link.
// An unknown email returns nil so the endpoint does not leak which
// addresses have accounts.
func (a *ServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	userData, err := a.Repository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			slog.Info("password reset requested for unknown email", "email", req.Email)
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	rawToken := make([]byte, 32)
	if _, err := rand.Read(rawToken); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(rawToken)

	// Only the hash is stored; the raw token travels in the email link.
	hashed := hashResetToken(token)
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := a.Repository.SetResetToken(ctx, userData.ID, &hashed, &expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", a.frontendURL, token)
	if err := a.email.SendPasswordReset(userData.Email, resetLink, expiresAt.Format(time.RFC1123)); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the password.
func (a *ServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.Repository.GetByResetToken(ctx, hashResetToken(req.Token))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrInvalidToken
		}
		return fmt.Errorf("failed to get user by reset token: %w", err)
	}

	if userData.PasswordResetExpires == nil || time.Now().After(*userData.PasswordResetExpires) {
		return auth.ErrResetTokenExpired
	}

	passwordHash, err := a.hashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := a.Repository.UpdatePassword(ctx, userData.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := a.Repository.SetResetToken(ctx, userData.ID, nil, nil); err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
