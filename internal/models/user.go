package models

import (
	"encoding/json"
	"time"
)

// User represents a registered user. The password hash never leaves the
// repository layer. Preferences is a free-form JSON object owned by the
// client.
type User struct {
	ID          int             `json:"id"`
	Email       string          `json:"email"`
	Username    string          `json:"username"`
	FullName    string          `json:"full_name,omitempty"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	IsAdmin     bool            `json:"is_admin"`
	CreatedAt   time.Time       `json:"created_at"`
	LastLogin   *time.Time      `json:"last_login,omitempty"`
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// LoginRequest is the request body for login. Either email or username
// must be set.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token for rotation or revocation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	Success   bool      `json:"success"`
	User      User      `json:"user"`
	Tokens    TokenPair `json:"tokens"`
	ExpiresIn string    `json:"expires_in"`
}

// UpdateProfileRequest is a partial profile update. Nil fields are untouched.
type UpdateProfileRequest struct {
	FullName    *string         `json:"full_name"`
	AvatarURL   *string         `json:"avatar_url"`
	Preferences json.RawMessage `json:"preferences"`
}

// UserStats summarizes a user's activity for the profile endpoint.
type UserStats struct {
	TotalRequests    int `json:"total_requests"`
	TotalSharedViews int `json:"total_shared_views"`
}
