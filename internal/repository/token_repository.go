package repository

import (
	"database/sql"
	"fmt"
	"time"

	"movie-recommendation-backend/internal/models"
)

// TokenRepository handles database operations for refresh tokens.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save stores a refresh token with its expiry and client metadata.
func (r *TokenRepository) Save(userID int, token string, expiresAt time.Time, deviceInfo, ipAddress string) error {
	_, err := r.db.Exec(`
		INSERT INTO refresh_tokens (user_id, token, expires_at, device_info, ip_address)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
	`, userID, token, expiresAt, deviceInfo, ipAddress)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// Revoke marks a refresh token revoked. Returns false when the token was
// unknown.
func (r *TokenRepository) Revoke(token string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE refresh_tokens SET is_revoked = true WHERE token = $1
	`, token)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Validate checks a refresh token against the store: it must exist, be
// unexpired, unrevoked, and belong to an active user. Returns the owning
// user, or nil when the token is not acceptable.
func (r *TokenRepository) Validate(token string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		SELECT u.id, u.email, u.username, u.is_admin
		FROM refresh_tokens rt
		JOIN users u ON rt.user_id = u.id
		WHERE rt.token = $1
			AND rt.expires_at > CURRENT_TIMESTAMP
			AND rt.is_revoked = false
			AND u.is_active = true
	`, token).Scan(&user.ID, &user.Email, &user.Username, &user.IsAdmin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}
	return &user, nil
}

// DeleteExpired removes tokens past their expiry. Intended for periodic
// housekeeping.
func (r *TokenRepository) DeleteExpired() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM refresh_tokens WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return res.RowsAffected()
}
