package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"movie-recommendation-backend/internal/config"
	"movie-recommendation-backend/internal/database"
	"movie-recommendation-backend/internal/handler"
	"movie-recommendation-backend/internal/kinopoisk"
	"movie-recommendation-backend/internal/middleware"
	"movie-recommendation-backend/internal/random"
	"movie-recommendation-backend/internal/repository"
	"movie-recommendation-backend/internal/service"
)

func main() {
	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache and rate limiting", "error", err)
	}

	// Shared across request goroutines; the locked source keeps page, sort
	// and shuffle selection race-free.
	rng := random.NewLocked(time.Now().UnixNano())

	// Initialize layers
	catalog := kinopoisk.NewClient(cfg.Kinopoisk.APIKey, cfg.Kinopoisk.BaseURL, cfg.Recommend.Limit, rng)

	historyRepo := repository.NewHistoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	friendRepo := repository.NewFriendRepository(db)

	tm := service.NewTokenManager(cfg.JWT)
	recSvc := service.NewRecommendationService(catalog, historyRepo, rdb, cfg.Recommend.Policy, rng)
	authSvc := service.NewAuthService(userRepo, tokenRepo, tm)
	friendSvc := service.NewFriendService(friendRepo, userRepo)

	// Periodic cleanup of expired refresh tokens
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := tokenRepo.DeleteExpired(); err != nil {
				slog.Error("refresh token cleanup failed", "error", err)
			} else if n > 0 {
				slog.Info("removed expired refresh tokens", "count", n)
			}
		}
	}()

	recHandler := handler.NewRecommendationHandler(recSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	friendHandler := handler.NewFriendHandler(friendSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Movie Recommendation API",
		ServerHeader: "Movie-Recommendation",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.NewRateLimiter(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSec).Handler())

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	auth := middleware.Authenticate(tm)
	optionalAuth := middleware.OptionalAuthenticate(tm)

	app.Get("/", recHandler.Index)
	app.Get("/health", recHandler.Health)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/health", recHandler.Health)
	api.Post("/recommend", recHandler.Recommend, optionalAuth)
	api.Get("/options", recHandler.Options)
	api.Get("/history", recHandler.History, optionalAuth)
	api.Get("/stats", recHandler.Stats)

	authAPI := api.Group("/auth")
	authAPI.Post("/register", authHandler.Register)
	authAPI.Post("/login", authHandler.Login)
	authAPI.Post("/refresh", authHandler.Refresh)
	authAPI.Post("/logout", authHandler.Logout)
	authAPI.Get("/me", authHandler.Me, auth)
	authAPI.Get("/profile", authHandler.Profile, auth)
	authAPI.Put("/profile", authHandler.UpdateProfile, auth)

	admin := api.Group("/admin", auth, middleware.RequireAdmin())
	admin.Post("/tokens/cleanup", authHandler.CleanupTokens)

	friends := api.Group("/friends", auth)
	friends.Get("/", friendHandler.ListFriends)
	friends.Post("/request", friendHandler.SendRequest)
	friends.Post("/accept", friendHandler.AcceptRequest)
	friends.Post("/reject", friendHandler.RejectRequest)
	friends.Get("/requests", friendHandler.PendingRequests)
	friends.Get("/search", friendHandler.SearchUsers)
	friends.Get("/recommendations", friendHandler.Recommendations)
	friends.Post("/movies/share", friendHandler.ShareMovie)
	friends.Get("/:friendId/movies", friendHandler.FriendMovies)
	friends.Delete("/:friendId", friendHandler.RemoveFriend)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	addr := ":" + cfg.Port
	slog.Info("starting movie recommendation backend", "addr", addr, "policy", cfg.Recommend.Policy)
	if err := app.Listen(addr); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
