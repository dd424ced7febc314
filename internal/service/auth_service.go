package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardioalert/internal/apperror"
	"cardioalert/internal/geo"
	"cardioalert/internal/models"
	"cardioalert/internal/repository"
	"cardioalert/pkg/logger"
	"cardioalert/pkg/utils"

	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any failed login or refresh
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditRepository
}

func NewAuthService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account and logs it in
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*LoginResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.Validation("email is required")
	}
	if len(password) < 6 {
		return nil, apperror.Validation("password must be at least 6 characters")
	}

	user, err := s.createUser(ctx, strings.TrimSpace(name), email, password, models.RoleUser)
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &user.ID, models.AuditUserRegistration, fmt.Sprintf("User %s registered", email))

	return s.issueTokens(ctx, user)
}

// EnsureAdmin creates the bootstrap admin account if no user holds that email yet
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	if _, err := s.createUser(ctx, "Administrator", email, password, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("Bootstrap admin created", zap.String("email", email))
	return nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	// Check if email already exists
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperror.Conflict("email already registered")
	}
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = normalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	_ = s.auditRepo.CreateAuditLog(ctx, &user.ID, models.AuditUserLogin, fmt.Sprintf("User %s logged in", email))

	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Hash and store refresh token
	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashRefreshToken(refreshToken),
		ExpiresAt: time.Now().Add(utils.GetRefreshTokenExpiry()),
	}
	if err := s.userRepo.CreateRefreshToken(ctx, refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         newUserResponse(user),
	}, nil
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.userRepo.FindRefreshTokenByHash(ctx, utils.HashRefreshToken(refreshToken))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if time.Now().After(token.ExpiresAt) {
		return "", ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(token.User.ID, token.User.Email, token.User.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.userRepo.RevokeRefreshTokenByHash(ctx, utils.HashRefreshToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// UpdateLocation records the user's last known position
func (s *AuthService) UpdateLocation(ctx context.Context, userID uint, lat, lon float64) error {
	if !geo.ValidCoordinates(lat, lon) {
		return apperror.Validation("invalid coordinates")
	}
	if err := s.userRepo.UpdateLocation(ctx, userID, lat, lon, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return nil
}

// UpdateFCMToken stores the device token push notifications go to
func (s *AuthService) UpdateFCMToken(ctx context.Context, userID uint, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperror.Validation("fcm token is required")
	}
	if err := s.userRepo.UpdateFCMToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	return nil
}

// Me returns the caller's profile
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
