package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"movie-recommendation-backend/internal/models"
	"movie-recommendation-backend/internal/repository"
)

const bcryptCost = 10

// Typed auth failures, mapped to HTTP statuses at the handler.
var (
	ErrEmailTaken          = errors.New("email is already registered")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

// ValidationError aggregates input validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService implements registration, login, token rotation and profile
// management.
type AuthService struct {
	users  *repository.UserRepository
	tokens *repository.TokenRepository
	tm     *TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *repository.UserRepository, tokens *repository.TokenRepository, tm *TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens, tm: tm}
}

// Register creates a user and issues the first token pair.
func (s *AuthService) Register(req models.RegisterRequest, deviceInfo, ip string) (*models.AuthResponse, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmailOrUsername(req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Email == req.Email {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(req.Email, req.Username, string(hash), req.FullName, req.AvatarURL)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(*user, deviceInfo, ip)
}

// Login authenticates by email or username and issues a token pair. The
// error for unknown user and wrong password is identical on purpose.
func (s *AuthService) Login(req models.LoginRequest, deviceInfo, ip string) (*models.AuthResponse, error) {
	login := req.Email
	if login == "" {
		login = req.Username
	}
	if login == "" || req.Password == "" {
		return nil, &ValidationError{Errors: []string{"email or username and password are required"}}
	}

	user, hash, err := s.users.FindCredentials(login)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		slog.Error("failed to update last login", "user_id", user.ID, "error", err)
	}

	return s.issueTokens(*user, deviceInfo, ip)
}

// Refresh rotates a refresh token: the presented token is checked against
// the store, revoked, and a fresh pair is issued.
func (s *AuthService) Refresh(refreshToken, deviceInfo, ip string) (*models.AuthResponse, error) {
	if refreshToken == "" {
		return nil, &ValidationError{Errors: []string{"refresh_token is required"}}
	}

	if _, err := s.tm.VerifyRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}

	if _, err := s.tokens.Revoke(refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(*user, deviceInfo, ip)
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	_, err := s.tokens.Revoke(refreshToken)
	return err
}

// User returns a user's current record.
func (s *AuthService) User(userID int) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Profile returns a user's record and activity counters.
func (s *AuthService) Profile(userID int) (*models.User, *models.UserStats, error) {
	user, err := s.users.GetByID(userID)
	if err == sql.ErrNoRows {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get profile: %w", err)
	}

	stats, err := s.users.GetUserStats(userID)
	if err != nil {
		slog.Error("failed to get user stats", "user_id", userID, "error", err)
		stats = &models.UserStats{}
	}

	return user, stats, nil
}

// UpdateProfile applies a partial profile update.
func (s *AuthService) UpdateProfile(userID int, req models.UpdateProfileRequest) (*models.User, error) {
	var errs []string
	if req.FullName == nil && req.AvatarURL == nil && req.Preferences == nil {
		errs = append(errs, "nothing to update")
	}
	if req.FullName != nil && len(*req.FullName) > 255 {
		errs = append(errs, "full name is too long (max 255 characters)")
	}
	if req.AvatarURL != nil && *req.AvatarURL != "" && !isValidURL(*req.AvatarURL) {
		errs = append(errs, "invalid avatar URL")
	}
	if req.Preferences != nil && !isJSONObject(req.Preferences) {
		errs = append(errs, "preferences must be a JSON object")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	user, err := s.users.UpdateProfile(userID, req.FullName, req.AvatarURL, req.Preferences)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// CleanupExpiredTokens removes refresh tokens past their expiry and reports
// how many were deleted.
func (s *AuthService) CleanupExpiredTokens() (int64, error) {
	return s.tokens.DeleteExpired()
}

func (s *AuthService) issueTokens(user models.User, deviceInfo, ip string) (*models.AuthResponse, error) {
	pair, err := s.tm.GenerateTokens(user)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.tm.RefreshExpiry())
	if err := s.tokens.Save(user.ID, pair.RefreshToken, expiresAt, deviceInfo, ip); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Success:   true,
		User:      user,
		Tokens:    pair,
		ExpiresIn: s.tm.AccessExpiry().String(),
	}, nil
}

func validateRegistration(req models.RegisterRequest) error {
	var errs []string
	if !emailPattern.MatchString(req.Email) {
		errs = append(errs, "invalid email")
	}
	if len(req.Username) < 3 || len(req.Username) > 100 {
		errs = append(errs, "username must be between 3 and 100 characters")
	}
	if len(req.Password) < 6 {
		errs = append(errs, "password must be at least 6 characters")
	}
	if len(req.FullName) > 255 {
		errs = append(errs, "full name is too long (max 255 characters)")
	}
	if req.AvatarURL != "" && !isValidURL(req.AvatarURL) {
		errs = append(errs, "invalid avatar URL")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func isValidURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isJSONObject(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{") && json.Valid(raw)
}
