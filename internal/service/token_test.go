package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommendation-backend/internal/config"
	"movie-recommendation-backend/internal/models"
)

func testTokenManager() *TokenManager {
	return NewTokenManager(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
}

func testUser() models.User {
	return models.User{
		ID:       42,
		Email:    "kino@example.com",
		Username: "kinoman",
		IsAdmin:  true,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := testTokenManager()

	pair, err := tm.GenerateTokens(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := tm.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "kinoman", claims.Username)
	assert.Equal(t, "kino@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)

	refresh, err := tm.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 42, refresh.UserID)
	assert.Equal(t, "refresh", refresh.TokenType)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	tm := testTokenManager()
	pair, err := tm.GenerateTokens(testUser())
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(pair.RefreshToken)
	assert.Error(t, err, "refresh token must not verify as access token")

	_, err = tm.VerifyRefreshToken(pair.AccessToken)
	assert.Error(t, err, "access token must not verify as refresh token")
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	pair, err := testTokenManager().GenerateTokens(testUser())
	require.NoError(t, err)

	other := NewTokenManager(config.JWTConfig{
		AccessSecret:  "different-secret",
		RefreshSecret: "another-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})

	_, err = other.VerifyAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  -time.Minute,
		RefreshExpiry: -time.Minute,
	})

	pair, err := tm.GenerateTokens(testUser())
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(pair.AccessToken)
	assert.Error(t, err)

	_, err = tm.VerifyRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := testTokenManager()

	_, err := tm.VerifyAccessToken("not.a.token")
	assert.Error(t, err)
}
