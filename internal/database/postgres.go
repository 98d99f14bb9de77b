package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"movie-recommendation-backend/internal/config"
)

// NewPostgres creates a new PostgreSQL connection and runs migrations.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(255),
			avatar_url VARCHAR(500),
			preferences JSONB DEFAULT '{}',
			is_admin BOOLEAN DEFAULT FALSE,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			last_login TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			token TEXT UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			is_revoked BOOLEAN DEFAULT FALSE,
			device_info TEXT,
			ip_address VARCHAR(64),
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS recommendation_history (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL DEFAULT 'anonymous',
			with_whom VARCHAR(100) NOT NULL,
			when_time VARCHAR(100) NOT NULL,
			purpose VARCHAR(100) NOT NULL,
			show_only VARCHAR(100),
			movies_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_friends (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			friend_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			requested_at TIMESTAMP DEFAULT NOW(),
			accepted_at TIMESTAMP,
			UNIQUE (user_id, friend_id)
		)`,
		`CREATE TABLE IF NOT EXISTS shared_movie_views (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			friend_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			movie_id INTEGER NOT NULL,
			movie_title VARCHAR(500) NOT NULL,
			movie_poster VARCHAR(500),
			rating DOUBLE PRECISION,
			comment TEXT,
			watched_at TIMESTAMP DEFAULT NOW(),
			UNIQUE (user_id, friend_id, movie_id)
		)`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS preferences JSONB DEFAULT '{}'`,
		// Indexes for common query patterns
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_token ON refresh_tokens(token)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_id ON recommendation_history(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created_at ON recommendation_history(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_user_friends_user_id ON user_friends(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_friends_friend_id ON user_friends(friend_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shared_views_user_id ON shared_movie_views(user_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
