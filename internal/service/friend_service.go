package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"movie-recommendation-backend/internal/models"
	"movie-recommendation-backend/internal/repository"
)

// Typed friend-graph failures.
var (
	ErrSelfFriend      = errors.New("cannot add yourself as a friend")
	ErrAlreadyFriends  = errors.New("already friends with this user")
	ErrRequestPending  = errors.New("friend request already sent")
	ErrRequestBlocked  = errors.New("cannot send a request to this user")
	ErrRequestNotFound = errors.New("friend request not found or already handled")
	ErrNotFriends      = errors.New("not friends with this user")
	ErrFriendNotFound  = errors.New("friend not found")
	ErrSearchTooShort  = errors.New("search query must be at least 2 characters")
)

// FriendService implements the friend graph and shared viewing features.
type FriendService struct {
	friends *repository.FriendRepository
	users   *repository.UserRepository
}

// NewFriendService creates a new FriendService.
func NewFriendService(friends *repository.FriendRepository, users *repository.UserRepository) *FriendService {
	return &FriendService{friends: friends, users: users}
}

// SendRequest creates a pending friend request to a user identified by id or
// username. Returns the created request and the target user.
func (s *FriendService) SendRequest(userID int, req models.SendFriendRequest) (*models.Friendship, *models.User, error) {
	var friend *models.User
	var err error
	switch {
	case req.UserID != 0:
		friend, err = s.users.GetByID(req.UserID)
	case req.Username != "":
		friend, _, err = s.users.FindCredentials(req.Username)
	default:
		return nil, nil, &ValidationError{Errors: []string{"username or user_id is required"}}
	}
	if err == sql.ErrNoRows {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if friend.ID == userID {
		return nil, nil, ErrSelfFriend
	}

	existing, err := s.friends.GetFriendship(userID, friend.ID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendStatusAccepted:
			return nil, nil, ErrAlreadyFriends
		case models.FriendStatusPending:
			return nil, nil, ErrRequestPending
		case models.FriendStatusBlocked:
			return nil, nil, ErrRequestBlocked
		}
	}

	friendship, err := s.friends.CreateRequest(userID, friend.ID)
	if err != nil {
		return nil, nil, err
	}
	return friendship, friend, nil
}

// AcceptRequest accepts a pending incoming request.
func (s *FriendService) AcceptRequest(userID, requestID int) (*models.Friendship, error) {
	f, err := s.friends.AcceptRequest(requestID, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrRequestNotFound
	}
	return f, nil
}

// RejectRequest rejects a pending incoming request.
func (s *FriendService) RejectRequest(userID, requestID int) (*models.Friendship, error) {
	f, err := s.friends.RejectRequest(requestID, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrRequestNotFound
	}
	return f, nil
}

// RemoveFriend deletes a friendship and its shared views.
func (s *FriendService) RemoveFriend(userID, friendID int) error {
	n, err := s.friends.RemoveFriend(userID, friendID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFriendNotFound
	}
	return nil
}

// ListFriends returns the user's friends with the given status.
func (s *FriendService) ListFriends(userID int, status string, limit, offset int) ([]models.Friend, int, error) {
	if status == "" {
		status = models.FriendStatusAccepted
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.friends.ListFriends(userID, status, limit, offset)
}

// PendingRequests returns the user's incoming pending requests.
func (s *FriendService) PendingRequests(userID int) ([]models.FriendRequestInfo, error) {
	return s.friends.PendingRequests(userID)
}

// SearchUsers finds users by a free-text query.
func (s *FriendService) SearchUsers(userID int, query string, limit, offset int) ([]models.UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return nil, ErrSearchTooShort
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.friends.SearchUsers(userID, "%"+query+"%", limit, offset)
}

// FriendMovies returns the shared views with a friend plus the friend's
// profile and viewing stats. Requires an accepted friendship.
func (s *FriendService) FriendMovies(userID, friendID, limit, offset int) (*models.User, []models.SharedMovieView, *models.FriendViewStats, error) {
	if err := s.requireFriendship(userID, friendID); err != nil {
		return nil, nil, nil, err
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	friend, err := s.users.GetByID(friendID)
	if err == sql.ErrNoRows {
		return nil, nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}

	views, err := s.friends.FriendMovies(userID, friendID, limit, offset)
	if err != nil {
		return nil, nil, nil, err
	}

	stats, err := s.friends.FriendViewStats(friendID)
	if err != nil {
		return nil, nil, nil, err
	}

	return friend, views, stats, nil
}

// ShareMovie records a shared viewing with a friend. Requires an accepted
// friendship.
func (s *FriendService) ShareMovie(userID int, req models.ShareMovieRequest) (*models.SharedMovieView, error) {
	if req.MovieID == 0 || req.MovieTitle == "" {
		return nil, &ValidationError{Errors: []string{"movie_id and movie_title are required"}}
	}
	if err := s.requireFriendship(userID, req.FriendID); err != nil {
		return nil, err
	}
	return s.friends.UpsertSharedView(userID, req)
}

// Recommendations returns movies the user's friends watched that the user
// has not.
func (s *FriendService) Recommendations(userID, limit int) ([]models.FriendRecommendation, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.friends.FriendRecommendations(userID, limit)
}

func (s *FriendService) requireFriendship(userID, friendID int) error {
	f, err := s.friends.GetFriendship(userID, friendID)
	if err != nil {
		return err
	}
	if f == nil || f.Status != models.FriendStatusAccepted {
		return ErrNotFriends
	}
	return nil
}
