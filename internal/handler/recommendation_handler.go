package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-backend/internal/kinopoisk"
	"movie-recommendation-backend/internal/middleware"
	"movie-recommendation-backend/internal/models"
	"movie-recommendation-backend/internal/service"
)

// Recommender produces scenario-based recommendations.
type Recommender interface {
	Recommend(ctx context.Context, scenario models.Scenario, userID string) (*models.RecommendationResponse, error)
	Options() models.OptionsResponse
	History(userID string, limit int) ([]models.HistoryEntry, error)
	Stats(ctx context.Context, periodDays int) (*models.ServiceStats, error)
}

// RecommendationHandler handles HTTP requests for recommendations.
type RecommendationHandler struct {
	svc Recommender
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(svc Recommender) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *RecommendationHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-recommendation-backend",
	})
}

// Index lists the available endpoints.
// @Summary API index
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *RecommendationHandler) Index(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Movie Recommendation API",
		"endpoints": fiber.Map{
			"recommend": "POST /api/v1/recommend",
			"options":   "GET /api/v1/options",
			"history":   "GET /api/v1/history",
			"stats":     "GET /api/v1/stats",
			"auth":      "POST /api/v1/auth/{register,login,refresh,logout}",
			"friends":   "GET /api/v1/friends",
			"docs":      "GET /docs",
		},
	})
}

// Recommend returns a shuffled movie selection for a viewing scenario.
// @Summary Get movie recommendations
// @Tags recommendations
// @Accept json
// @Produce json
// @Param scenario body models.Scenario true "Viewing scenario"
// @Success 200 {object} models.RecommendationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /recommend [post]
func (h *RecommendationHandler) Recommend(c fiber.Ctx) error {
	var scenario models.Scenario
	if err := c.Bind().Body(&scenario); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
			"options": models.ValidOptions(),
		})
	}

	userID := middleware.HistoryUserID(c)

	result, err := h.svc.Recommend(c.Context(), scenario, userID)
	if err != nil {
		return h.recommendError(c, scenario, err)
	}

	return c.JSON(result)
}

func (h *RecommendationHandler) recommendError(c fiber.Ctx, scenario models.Scenario, err error) error {
	var missing *models.MissingFieldsError
	var invalid *models.InvalidValueError
	if errors.As(err, &missing) || errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"options": models.ValidOptions(),
		})
	}

	if errors.Is(err, kinopoisk.ErrNoResults) || errors.Is(err, service.ErrNoMatchAfterFilter) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "no movies matched the requested scenario",
			"suggestions": []string{
				"try a different with_whom or purpose value",
				"drop the show_only filter for a wider selection",
			},
		})
	}

	if kinopoisk.IsKind(err, kinopoisk.KindUnauthorized) ||
		kinopoisk.IsKind(err, kinopoisk.KindRateLimited) ||
		kinopoisk.IsKind(err, kinopoisk.KindUnavailable) {
		slog.Error("movie catalog unavailable", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "movie catalog is temporarily unavailable, try again later",
		})
	}

	slog.Error("recommendation failed", "scenario", scenario, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "failed to build recommendations",
	})
}

// Options returns the accepted scenario values and the genre mapping.
// @Summary List scenario options
// @Tags recommendations
// @Produce json
// @Success 200 {object} models.OptionsResponse
// @Router /options [get]
func (h *RecommendationHandler) Options(c fiber.Ctx) error {
	return c.JSON(h.svc.Options())
}

// History returns the caller's recent recommendation requests.
// @Summary Get recommendation history
// @Tags recommendations
// @Produce json
// @Param limit query int false "Max entries" default(10)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /history [get]
func (h *RecommendationHandler) History(c fiber.Ctx) error {
	userID := middleware.HistoryUserID(c)
	limit := fiber.Query(c, "limit", 10)

	entries, err := h.svc.History(userID, limit)
	if err != nil {
		slog.Error("failed to load history", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve history",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"history": entries,
		"total":   len(entries),
	})
}

// Stats returns aggregate usage statistics.
// @Summary Get service statistics
// @Tags recommendations
// @Produce json
// @Param period query int false "Period in days" default(7)
// @Success 200 {object} models.ServiceStats
// @Failure 500 {object} ErrorResponse
// @Router /stats [get]
func (h *RecommendationHandler) Stats(c fiber.Ctx) error {
	period := fiber.Query(c, "period", 7)
	if period < 1 {
		period = 7
	}

	stats, err := h.svc.Stats(c.Context(), period)
	if err != nil {
		slog.Error("failed to load stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve statistics",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
