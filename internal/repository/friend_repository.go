package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"movie-recommendation-backend/internal/models"
)

// FriendRepository handles database operations for the friend graph and
// shared movie views.
type FriendRepository struct {
	db *sql.DB
}

// NewFriendRepository creates a new FriendRepository.
func NewFriendRepository(db *sql.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// GetFriendship returns the friendship row between two users in either
// direction, or nil when none exists.
func (r *FriendRepository) GetFriendship(userID, friendID int) (*models.Friendship, error) {
	var f models.Friendship
	var accepted sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, user_id, friend_id, status, requested_at, accepted_at
		FROM user_friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID).Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.RequestedAt, &accepted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up friendship: %w", err)
	}
	if accepted.Valid {
		f.AcceptedAt = &accepted.Time
	}
	return &f, nil
}

// CreateRequest inserts a pending friend request.
func (r *FriendRepository) CreateRequest(userID, friendID int) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.QueryRow(`
		INSERT INTO user_friends (user_id, friend_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, user_id, friend_id, status, requested_at
	`, userID, friendID).Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.RequestedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return &f, nil
}

// AcceptRequest marks a pending request to userID accepted. Returns nil when
// no such pending request exists.
func (r *FriendRepository) AcceptRequest(requestID, userID int) (*models.Friendship, error) {
	return r.resolveRequest(requestID, userID,
		`UPDATE user_friends
		 SET status = 'accepted', accepted_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND friend_id = $2 AND status = 'pending'
		 RETURNING id, user_id, friend_id, status, requested_at, accepted_at`)
}

// RejectRequest marks a pending request to userID rejected. Returns nil when
// no such pending request exists.
func (r *FriendRepository) RejectRequest(requestID, userID int) (*models.Friendship, error) {
	return r.resolveRequest(requestID, userID,
		`UPDATE user_friends
		 SET status = 'rejected'
		 WHERE id = $1 AND friend_id = $2 AND status = 'pending'
		 RETURNING id, user_id, friend_id, status, requested_at, accepted_at`)
}

func (r *FriendRepository) resolveRequest(requestID, userID int, query string) (*models.Friendship, error) {
	var f models.Friendship
	var accepted sql.NullTime
	err := r.db.QueryRow(query, requestID, userID).
		Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.RequestedAt, &accepted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friend request: %w", err)
	}
	if accepted.Valid {
		f.AcceptedAt = &accepted.Time
	}
	return &f, nil
}

// RemoveFriend deletes the friendship and its shared views in both
// directions. Returns the number of friendship rows removed.
func (r *FriendRepository) RemoveFriend(userID, friendID int) (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM user_friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove friend: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		if _, err := r.db.Exec(`
			DELETE FROM shared_movie_views
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		`, userID, friendID); err != nil {
			return n, fmt.Errorf("failed to remove shared views: %w", err)
		}
	}
	return n, nil
}

// ListFriends returns the user's friendships with the given status, newest
// accepted first, plus the total count.
func (r *FriendRepository) ListFriends(userID int, status string, limit, offset int) ([]models.Friend, int, error) {
	rows, err := r.db.Query(`
		SELECT
			uf.id, uf.status, uf.requested_at, uf.accepted_at,
			u.id, u.username, u.email, u.full_name, u.avatar_url, u.last_login,
			COALESCE(mv.common_movies, 0)
		FROM user_friends uf
		JOIN users u ON (
			(uf.user_id = $1 AND uf.friend_id = u.id) OR
			(uf.friend_id = $1 AND uf.user_id = u.id)
		)
		LEFT JOIN (
			SELECT user_id, friend_id, COUNT(*) AS common_movies
			FROM shared_movie_views
			WHERE user_id = $1 OR friend_id = $1
			GROUP BY user_id, friend_id
		) mv ON (
			(mv.user_id = $1 AND mv.friend_id = u.id) OR
			(mv.friend_id = $1 AND mv.user_id = u.id)
		)
		WHERE (uf.user_id = $1 OR uf.friend_id = $1) AND uf.status = $2
		ORDER BY uf.accepted_at DESC NULLS LAST, uf.requested_at DESC
		LIMIT $3 OFFSET $4
	`, userID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query friends: %w", err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		var f models.Friend
		var accepted, lastLogin sql.NullTime
		var full, avatar sql.NullString
		if err := rows.Scan(&f.FriendshipID, &f.Status, &f.RequestedAt, &accepted,
			&f.FriendID, &f.Username, &f.Email, &full, &avatar, &lastLogin,
			&f.CommonMoviesCount); err != nil {
			return nil, 0, fmt.Errorf("failed to scan friend: %w", err)
		}
		if accepted.Valid {
			f.AcceptedAt = &accepted.Time
		}
		if lastLogin.Valid {
			f.LastLogin = &lastLogin.Time
		}
		f.FullName = full.String
		f.AvatarURL = avatar.String
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM user_friends
		WHERE (user_id = $1 OR friend_id = $1) AND status = $2
	`, userID, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count friends: %w", err)
	}

	return friends, total, nil
}

// PendingRequests returns incoming pending requests, newest first.
func (r *FriendRepository) PendingRequests(userID int) ([]models.FriendRequestInfo, error) {
	rows, err := r.db.Query(`
		SELECT uf.id, uf.requested_at, u.id, u.username, u.email, u.full_name, u.avatar_url
		FROM user_friends uf
		JOIN users u ON uf.user_id = u.id
		WHERE uf.friend_id = $1 AND uf.status = 'pending'
		ORDER BY uf.requested_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending requests: %w", err)
	}
	defer rows.Close()

	requests := []models.FriendRequestInfo{}
	for rows.Next() {
		var req models.FriendRequestInfo
		var full, avatar sql.NullString
		if err := rows.Scan(&req.RequestID, &req.RequestedAt, &req.UserID,
			&req.Username, &req.Email, &full, &avatar); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		req.FullName = full.String
		req.AvatarURL = avatar.String
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// SearchUsers finds active users matching the pattern by username, email or
// full name, annotated with friendship status relative to userID. Friends
// sort first, then pending, then the rest.
func (r *FriendRepository) SearchUsers(userID int, pattern string, limit, offset int) ([]models.UserSearchResult, error) {
	rows, err := r.db.Query(`
		SELECT
			u.id, u.username, u.email, u.full_name, u.avatar_url, u.last_login, u.created_at,
			COALESCE(uf.status, 'not_friends') AS friendship_status,
			COALESCE(mv.common_movies, 0)
		FROM users u
		LEFT JOIN user_friends uf ON (
			(uf.user_id = $1 AND uf.friend_id = u.id) OR
			(uf.user_id = u.id AND uf.friend_id = $1)
		)
		LEFT JOIN (
			SELECT user_id, friend_id, COUNT(*) AS common_movies
			FROM shared_movie_views
			WHERE user_id = $1 OR friend_id = $1
			GROUP BY user_id, friend_id
		) mv ON (
			(mv.user_id = $1 AND mv.friend_id = u.id) OR
			(mv.friend_id = $1 AND mv.user_id = u.id)
		)
		WHERE u.is_active = true
			AND u.id != $1
			AND (
				LOWER(u.username) LIKE LOWER($2) OR
				LOWER(u.email) LIKE LOWER($2) OR
				LOWER(u.full_name) LIKE LOWER($2)
			)
		ORDER BY
			CASE COALESCE(uf.status, 'not_friends')
				WHEN 'accepted' THEN 1
				WHEN 'pending' THEN 2
				ELSE 3
			END,
			u.username
		LIMIT $3 OFFSET $4
	`, userID, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	results := []models.UserSearchResult{}
	for rows.Next() {
		var res models.UserSearchResult
		var full, avatar sql.NullString
		var lastLogin sql.NullTime
		if err := rows.Scan(&res.ID, &res.Username, &res.Email, &full, &avatar,
			&lastLogin, &res.CreatedAt, &res.FriendshipStatus, &res.CommonMovies); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		res.FullName = full.String
		res.AvatarURL = avatar.String
		if lastLogin.Valid {
			res.LastLogin = &lastLogin.Time
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// FriendMovies returns shared views between two users, newest first.
// watchedBy marks which side of the pair recorded the view.
func (r *FriendRepository) FriendMovies(userID, friendID, limit, offset int) ([]models.SharedMovieView, error) {
	rows, err := r.db.Query(`
		SELECT movie_id, movie_title, movie_poster, watched_at, rating, comment,
			CASE WHEN user_id = $1 THEN 'me' ELSE 'friend' END AS watched_by
		FROM shared_movie_views
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		ORDER BY watched_at DESC
		LIMIT $3 OFFSET $4
	`, userID, friendID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared views: %w", err)
	}
	defer rows.Close()

	views := []models.SharedMovieView{}
	for rows.Next() {
		var v models.SharedMovieView
		var poster, comment sql.NullString
		var rating sql.NullFloat64
		if err := rows.Scan(&v.MovieID, &v.MovieTitle, &poster, &v.WatchedAt,
			&rating, &comment, &v.WatchedBy); err != nil {
			return nil, fmt.Errorf("failed to scan shared view: %w", err)
		}
		v.MoviePoster = poster.String
		v.Comment = comment.String
		if rating.Valid {
			v.Rating = &rating.Float64
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// FriendViewStats summarizes a user's recorded views.
func (r *FriendRepository) FriendViewStats(friendID int) (*models.FriendViewStats, error) {
	stats := &models.FriendViewStats{}
	var avg sql.NullFloat64
	var first, last sql.NullTime
	err := r.db.QueryRow(`
		SELECT COUNT(DISTINCT movie_id), AVG(rating), MIN(watched_at), MAX(watched_at)
		FROM shared_movie_views
		WHERE user_id = $1
	`, friendID).Scan(&stats.TotalWatched, &avg, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to query view stats: %w", err)
	}
	if avg.Valid {
		stats.AvgRating = &avg.Float64
	}
	if first.Valid {
		stats.FirstWatch = &first.Time
	}
	if last.Valid {
		stats.LastWatch = &last.Time
	}
	return stats, nil
}

// UpsertSharedView records a shared viewing, updating rating and comment on
// repeat.
func (r *FriendRepository) UpsertSharedView(userID int, req models.ShareMovieRequest) (*models.SharedMovieView, error) {
	var v models.SharedMovieView
	var poster, comment sql.NullString
	var rating sql.NullFloat64
	err := r.db.QueryRow(`
		INSERT INTO shared_movie_views
			(user_id, friend_id, movie_id, movie_title, movie_poster, rating, comment)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''))
		ON CONFLICT (user_id, friend_id, movie_id) DO UPDATE SET
			watched_at = CURRENT_TIMESTAMP,
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment
		RETURNING movie_id, movie_title, movie_poster, watched_at, rating, comment
	`, userID, req.FriendID, req.MovieID, req.MovieTitle, req.MoviePoster, req.Rating, req.Comment).
		Scan(&v.MovieID, &v.MovieTitle, &poster, &v.WatchedAt, &rating, &comment)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert shared view: %w", err)
	}
	v.MoviePoster = poster.String
	v.Comment = comment.String
	if rating.Valid {
		v.Rating = &rating.Float64
	}
	v.WatchedBy = "me"
	return &v, nil
}

// FriendRecommendations returns movies the user's friends watched that the
// user has not, ranked by watcher count then average rating.
func (r *FriendRepository) FriendRecommendations(userID, limit int) ([]models.FriendRecommendation, error) {
	rows, err := r.db.Query(`
		SELECT
			smv.movie_id,
			smv.movie_title,
			COALESCE(MAX(smv.movie_poster), '') AS movie_poster,
			COUNT(DISTINCT smv.user_id) AS friend_watch_count,
			AVG(smv.rating) AS avg_friend_rating,
			ARRAY_AGG(DISTINCT u.username) AS friend_usernames
		FROM shared_movie_views smv
		JOIN user_friends uf ON (
			(uf.user_id = $1 AND uf.friend_id = smv.user_id) OR
			(uf.friend_id = $1 AND uf.user_id = smv.user_id)
		)
		JOIN users u ON smv.user_id = u.id
		WHERE uf.status = 'accepted'
			AND smv.movie_id NOT IN (
				SELECT movie_id FROM shared_movie_views WHERE user_id = $1
			)
		GROUP BY smv.movie_id, smv.movie_title
		ORDER BY friend_watch_count DESC, avg_friend_rating DESC NULLS LAST
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend recommendations: %w", err)
	}
	defer rows.Close()

	recs := []models.FriendRecommendation{}
	for rows.Next() {
		var rec models.FriendRecommendation
		var avg sql.NullFloat64
		if err := rows.Scan(&rec.MovieID, &rec.MovieTitle, &rec.MoviePoster,
			&rec.FriendWatchCount, &avg, pq.Array(&rec.FriendUsernames)); err != nil {
			return nil, fmt.Errorf("failed to scan friend recommendation: %w", err)
		}
		if avg.Valid {
			rec.AvgFriendRating = &avg.Float64
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
