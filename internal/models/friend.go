package models

import "time"

// Friendship statuses.
const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
	FriendStatusRejected = "rejected"
	FriendStatusBlocked  = "blocked"
)

// Friendship is one row of the friend graph.
type Friendship struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	FriendID    int        `json:"friend_id"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

// Friend is one entry of a user's friend list.
type Friend struct {
	FriendshipID      int        `json:"friendship_id"`
	Status            string     `json:"status"`
	RequestedAt       time.Time  `json:"requested_at"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	FriendID          int        `json:"friend_id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name,omitempty"`
	AvatarURL         string     `json:"avatar_url,omitempty"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CommonMoviesCount int        `json:"common_movies_count"`
}

// FriendRequestInfo is an incoming pending friend request.
type FriendRequestInfo struct {
	RequestID   int       `json:"request_id"`
	RequestedAt time.Time `json:"requested_at"`
	UserID      int       `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

// SendFriendRequest identifies the target user by username or id.
type SendFriendRequest struct {
	Username string `json:"username"`
	UserID   int    `json:"user_id"`
}

// RespondFriendRequest accepts or rejects a pending request.
type RespondFriendRequest struct {
	RequestID int `json:"request_id"`
}

// SharedMovieView is one movie watched together with a friend.
type SharedMovieView struct {
	MovieID     int       `json:"movie_id"`
	MovieTitle  string    `json:"movie_title"`
	MoviePoster string    `json:"movie_poster,omitempty"`
	WatchedAt   time.Time `json:"watched_at"`
	Rating      *float64  `json:"rating,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	WatchedBy   string    `json:"watched_by"`
}

// ShareMovieRequest records a shared viewing with a friend.
type ShareMovieRequest struct {
	FriendID    int      `json:"friend_id"`
	MovieID     int      `json:"movie_id"`
	MovieTitle  string   `json:"movie_title"`
	MoviePoster string   `json:"movie_poster"`
	Rating      *float64 `json:"rating"`
	Comment     string   `json:"comment"`
}

// FriendViewStats summarizes a friend's viewing activity.
type FriendViewStats struct {
	TotalWatched int        `json:"total_watched"`
	AvgRating    *float64   `json:"avg_rating,omitempty"`
	FirstWatch   *time.Time `json:"first_watch,omitempty"`
	LastWatch    *time.Time `json:"last_watch,omitempty"`
}

// UserSearchResult is one row of the user search, annotated with the
// friendship status relative to the searching user.
type UserSearchResult struct {
	ID               int        `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name,omitempty"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	FriendshipStatus string     `json:"friendship_status"`
	CommonMovies     int        `json:"common_movies"`
}

// FriendRecommendation is a movie watched by friends but not by the user.
type FriendRecommendation struct {
	MovieID          int      `json:"movie_id"`
	MovieTitle       string   `json:"movie_title"`
	MoviePoster      string   `json:"movie_poster,omitempty"`
	FriendWatchCount int      `json:"friend_watch_count"`
	AvgFriendRating  *float64 `json:"avg_friend_rating,omitempty"`
	FriendUsernames  []string `json:"friend_usernames"`
}
