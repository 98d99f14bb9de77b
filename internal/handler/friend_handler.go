package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-backend/internal/middleware"
	"movie-recommendation-backend/internal/models"
	"movie-recommendation-backend/internal/service"
)

// FriendHandler handles HTTP requests for the friends graph and shared views.
type FriendHandler struct {
	svc *service.FriendService
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(svc *service.FriendService) *FriendHandler {
	return &FriendHandler{svc: svc}
}

// SendRequest sends a friend request by user id or username.
// @Summary Send a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param request body models.SendFriendRequest true "Target user"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /friends/request [post]
func (h *FriendHandler) SendRequest(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req models.SendFriendRequest
	if err := c.Bind().Body(&req); err != nil || (req.Username == "" && req.UserID == 0) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "username or user_id is required",
		})
	}

	friendship, target, err := h.svc.SendRequest(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFriend):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "user not found"})
		case errors.Is(err, service.ErrAlreadyFriends),
			errors.Is(err, service.ErrRequestPending),
			errors.Is(err, service.ErrRequestBlocked):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
		}
		slog.Error("friend request failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to send friend request",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"friendship": friendship,
		"friend": fiber.Map{
			"id":       target.ID,
			"username": target.Username,
		},
	})
}

// AcceptRequest accepts a pending friend request addressed to the caller.
// @Summary Accept a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param request body models.RespondFriendRequest true "Request id"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /friends/accept [post]
func (h *FriendHandler) AcceptRequest(c fiber.Ctx) error {
	return h.respond(c, h.svc.AcceptRequest, "accepted")
}

// RejectRequest rejects a pending friend request addressed to the caller.
// @Summary Reject a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param request body models.RespondFriendRequest true "Request id"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /friends/reject [post]
func (h *FriendHandler) RejectRequest(c fiber.Ctx) error {
	return h.respond(c, h.svc.RejectRequest, "rejected")
}

func (h *FriendHandler) respond(c fiber.Ctx, fn func(int, int) (*models.Friendship, error), action string) error {
	userID := middleware.UserID(c)

	var req models.RespondFriendRequest
	if err := c.Bind().Body(&req); err != nil || req.RequestID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "request_id is required",
		})
	}

	friendship, err := fn(userID, req.RequestID)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
		}
		slog.Error("friend request response failed", "user_id", userID, "action", action, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to handle friend request",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "friend request " + action,
		"friendship": friendship,
	})
}

// RemoveFriend removes a friendship and its shared views.
// @Summary Remove a friend
// @Tags friends
// @Produce json
// @Param friendId path int true "Friend user id"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /friends/{friendId} [delete]
func (h *FriendHandler) RemoveFriend(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	friendID, err := strconv.Atoi(c.Params("friendId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid friend id",
		})
	}

	if err := h.svc.RemoveFriend(userID, friendID); err != nil {
		if errors.Is(err, service.ErrFriendNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
		}
		slog.Error("failed to remove friend", "user_id", userID, "friend_id", friendID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to remove friend",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "friend removed",
	})
}

// ListFriends returns the caller's friends.
// @Summary List friends
// @Tags friends
// @Produce json
// @Param status query string false "Friendship status" default(accepted)
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /friends [get]
func (h *FriendHandler) ListFriends(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	status := c.Query("status", models.FriendStatusAccepted)
	limit := fiber.Query(c, "limit", 50)
	offset := fiber.Query(c, "offset", 0)

	friends, total, err := h.svc.ListFriends(userID, status, limit, offset)
	if err != nil {
		slog.Error("failed to list friends", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve friends",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"friends": friends,
		"total":   total,
	})
}

// PendingRequests returns friend requests awaiting the caller's response.
// @Summary List pending friend requests
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /friends/requests [get]
func (h *FriendHandler) PendingRequests(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	requests, err := h.svc.PendingRequests(userID)
	if err != nil {
		slog.Error("failed to list friend requests", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve friend requests",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"requests": requests,
		"total":    len(requests),
	})
}

// SearchUsers searches users to befriend.
// @Summary Search users
// @Tags friends
// @Produce json
// @Param q query string true "Search query (min 2 characters)"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /friends/search [get]
func (h *FriendHandler) SearchUsers(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	query := c.Query("q")
	limit := fiber.Query(c, "limit", 20)
	offset := fiber.Query(c, "offset", 0)

	users, err := h.svc.SearchUsers(userID, query, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrSearchTooShort) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		slog.Error("user search failed", "user_id", userID, "query", query, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to search users",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
		"total":   len(users),
	})
}

// FriendMovies returns movies a friend has shared, with view stats.
// @Summary Get a friend's shared movies
// @Tags friends
// @Produce json
// @Param friendId path int true "Friend user id"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /friends/{friendId}/movies [get]
func (h *FriendHandler) FriendMovies(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	friendID, err := strconv.Atoi(c.Params("friendId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid friend id",
		})
	}
	limit := fiber.Query(c, "limit", 20)
	offset := fiber.Query(c, "offset", 0)

	friend, views, stats, err := h.svc.FriendMovies(userID, friendID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFriends):
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "friend not found"})
		}
		slog.Error("failed to load friend movies", "user_id", userID, "friend_id", friendID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve friend movies",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"friend": fiber.Map{
			"id":       friend.ID,
			"username": friend.Username,
		},
		"movies": views,
		"stats":  stats,
	})
}

// ShareMovie records a movie the caller watched, visible to a friend.
// @Summary Share a watched movie with a friend
// @Tags friends
// @Accept json
// @Produce json
// @Param request body models.ShareMovieRequest true "Shared view"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /friends/movies/share [post]
func (h *FriendHandler) ShareMovie(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req models.ShareMovieRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	view, err := h.svc.ShareMovie(userID, req)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "validation failed",
				"details": vErr.Errors,
			})
		case errors.Is(err, service.ErrNotFriends):
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: err.Error()})
		}
		slog.Error("failed to share movie", "user_id", userID, "movie_id", req.MovieID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to share movie",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"view":    view,
	})
}

// Recommendations returns movies popular among the caller's friends.
// @Summary Get friend-based recommendations
// @Tags friends
// @Produce json
// @Param limit query int false "Max movies" default(10)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /friends/recommendations [get]
func (h *FriendHandler) Recommendations(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	limit := fiber.Query(c, "limit", 10)

	recs, err := h.svc.Recommendations(userID, limit)
	if err != nil {
		slog.Error("failed to load friend recommendations", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve recommendations",
		})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"recommendations": recs,
		"total":           len(recs),
	})
}
