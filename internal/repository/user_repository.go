package repository

import (
	"database/sql"
	"fmt"

	"movie-recommendation-backend/internal/models"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user and returns the stored record.
func (r *UserRepository) CreateUser(email, username, passwordHash, fullName, avatarURL string) (*models.User, error) {
	var user models.User
	var full, avatar sql.NullString
	err := r.db.QueryRow(`
		INSERT INTO users (email, username, password_hash, full_name, avatar_url)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id, email, username, full_name, avatar_url, is_admin, created_at
	`, email, username, passwordHash, fullName, avatarURL).
		Scan(&user.ID, &user.Email, &user.Username, &full, &avatar, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.FullName = full.String
	user.AvatarURL = avatar.String
	return &user, nil
}

// FindByEmailOrUsername returns an existing user matching either value, or
// nil when none exists.
func (r *UserRepository) FindByEmailOrUsername(email, username string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(`
		SELECT id, email, username FROM users
		WHERE email = $1 OR username = $2
		LIMIT 1
	`, email, username).Scan(&user.ID, &user.Email, &user.Username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// FindCredentials looks up an active user by email or username and returns
// the user together with the stored password hash.
func (r *UserRepository) FindCredentials(login string) (*models.User, string, error) {
	var user models.User
	var hash string
	var full, avatar sql.NullString
	var prefs []byte
	var lastLogin sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, email, username, password_hash, full_name, avatar_url,
			preferences, is_admin, created_at, last_login
		FROM users
		WHERE (email = $1 OR username = $1) AND is_active = true
	`, login).Scan(&user.ID, &user.Email, &user.Username, &hash, &full, &avatar,
		&prefs, &user.IsAdmin, &user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, "", err
	}
	user.FullName = full.String
	user.AvatarURL = avatar.String
	user.Preferences = prefs
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, hash, nil
}

// GetByID returns an active user by id.
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	var full, avatar sql.NullString
	var prefs []byte
	var lastLogin sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, email, username, full_name, avatar_url, preferences,
			is_admin, created_at, last_login
		FROM users
		WHERE id = $1 AND is_active = true
	`, id).Scan(&user.ID, &user.Email, &user.Username, &full, &avatar, &prefs,
		&user.IsAdmin, &user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	user.FullName = full.String
	user.AvatarURL = avatar.String
	user.Preferences = prefs
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

// UpdateLastLogin stamps a successful login.
func (r *UserRepository) UpdateLastLogin(id int) error {
	_, err := r.db.Exec(`UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// UpdateProfile applies a partial profile update and returns the new record.
// A nil preferences leaves the stored object untouched.
func (r *UserRepository) UpdateProfile(id int, fullName, avatarURL *string, preferences []byte) (*models.User, error) {
	var user models.User
	var full, avatar sql.NullString
	var prefs []byte
	var lastLogin sql.NullTime
	err := r.db.QueryRow(`
		UPDATE users
		SET full_name = COALESCE($2, full_name),
			avatar_url = COALESCE($3, avatar_url),
			preferences = COALESCE($4::jsonb, preferences),
			updated_at = NOW()
		WHERE id = $1 AND is_active = true
		RETURNING id, email, username, full_name, avatar_url, preferences,
			is_admin, created_at, last_login
	`, id, fullName, avatarURL, preferences).Scan(&user.ID, &user.Email, &user.Username,
		&full, &avatar, &prefs, &user.IsAdmin, &user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	user.FullName = full.String
	user.AvatarURL = avatar.String
	user.Preferences = prefs
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

// GetUserStats counts a user's history entries and shared views.
func (r *UserRepository) GetUserStats(id int) (*models.UserStats, error) {
	stats := &models.UserStats{}
	err := r.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM recommendation_history WHERE user_id = $1::text),
			(SELECT COUNT(DISTINCT movie_id) FROM shared_movie_views WHERE user_id = $2)
	`, fmt.Sprintf("%d", id), id).Scan(&stats.TotalRequests, &stats.TotalSharedViews)
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	return stats, nil
}
