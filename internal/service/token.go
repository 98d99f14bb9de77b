package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"movie-recommendation-backend/internal/config"
	"movie-recommendation-backend/internal/models"
)

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UserID   int    `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims carried by a refresh token.
type RefreshClaims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the HS256 access/refresh token pair.
// Access and refresh tokens use separate secrets.
type TokenManager struct {
	cfg config.JWTConfig
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{cfg: cfg}
}

// GenerateTokens issues a fresh token pair for a user.
func (tm *TokenManager) GenerateTokens(user models.User) (models.TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.cfg.AccessExpiry)),
		},
	})
	accessToken, err := access.SignedString([]byte(tm.cfg.AccessSecret))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		UserID:    user.ID,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.cfg.RefreshExpiry)),
		},
	})
	refreshToken, err := refresh.SignedString([]byte(tm.cfg.RefreshSecret))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// AccessExpiry reports the configured access token lifetime.
func (tm *TokenManager) AccessExpiry() time.Duration {
	return tm.cfg.AccessExpiry
}

// RefreshExpiry reports the configured refresh token lifetime.
func (tm *TokenManager) RefreshExpiry() time.Duration {
	return tm.cfg.RefreshExpiry
}

// VerifyAccessToken parses and validates an access token.
func (tm *TokenManager) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.cfg.AccessSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid access token")
	}
	return claims, nil
}

// VerifyRefreshToken parses and validates a refresh token signature. The
// database-side checks (revocation, expiry, active user) happen separately.
func (tm *TokenManager) VerifyRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.cfg.RefreshSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	if !parsed.Valid || claims.TokenType != "refresh" {
		return nil, fmt.Errorf("invalid refresh token")
	}
	return claims, nil
}
