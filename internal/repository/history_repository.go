package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"movie-recommendation-backend/internal/models"
)

// HistoryRepository handles database operations for recommendation history.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// SaveRequest inserts one history entry.
func (r *HistoryRepository) SaveRequest(ctx context.Context, entry models.HistoryEntry) error {
	userID := entry.UserID
	if userID == "" {
		userID = "anonymous"
	}
	var showOnly sql.NullString
	if entry.ShowOnly != "" {
		showOnly = sql.NullString{String: entry.ShowOnly, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recommendation_history
			(user_id, with_whom, when_time, purpose, show_only, movies_count)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, entry.WithWhom, entry.WhenTime, entry.Purpose, showOnly, entry.MoviesCount)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// GetHistory returns the most recent entries for a user, newest first.
func (r *HistoryRepository) GetHistory(userID string, limit int) ([]models.HistoryEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, with_whom, when_time, purpose, show_only, movies_count, created_at
		FROM recommendation_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		var showOnly sql.NullString
		if err := rows.Scan(&e.ID, &e.WithWhom, &e.WhenTime, &e.Purpose, &showOnly, &e.MoviesCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.UserID = userID
		e.ShowOnly = showOnly.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetStats aggregates history counters, overall and over the last periodDays.
func (r *HistoryRepository) GetStats(periodDays int) (*models.ServiceStats, error) {
	stats := &models.ServiceStats{}

	var avg sql.NullFloat64
	var totalMovies sql.NullInt64
	err := r.db.QueryRow(`
		SELECT COUNT(*),
			COUNT(DISTINCT user_id),
			SUM(movies_count),
			AVG(movies_count)
		FROM recommendation_history
	`).Scan(&stats.TotalRequests, &stats.UniqueUsers, &totalMovies, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to query total stats: %w", err)
	}
	stats.TotalMoviesRecommended = int(totalMovies.Int64)
	stats.AvgMoviesPerRequest = avg.Float64

	err = r.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT user_id)
		FROM recommendation_history
		WHERE created_at >= CURRENT_DATE - $1 * INTERVAL '1 day'
	`, periodDays).Scan(&stats.RecentRequests, &stats.RecentUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to query period stats: %w", err)
	}

	var popular sql.NullString
	err = r.db.QueryRow(`
		SELECT with_whom
		FROM recommendation_history
		GROUP BY with_whom
		ORDER BY COUNT(*) DESC
		LIMIT 1
	`).Scan(&popular)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query popular scenario: %w", err)
	}
	if popular.Valid {
		stats.MostPopularScenario = popular.String
	}

	stats.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return stats, nil
}
