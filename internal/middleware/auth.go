package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"movie-recommendation-backend/internal/service"
)

// Locals keys set by the auth middleware.
const (
	LocalsUserID   = "user_id"
	LocalsUsername = "username"
	LocalsIsAdmin  = "is_admin"
)

// Authenticate requires a valid Bearer access token and annotates the
// request with the caller's identity.
func Authenticate(tm *service.TokenManager) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := bearerClaims(c, tm)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "authentication required, use 'Bearer <token>'",
			})
		}
		c.Locals(LocalsUserID, claims.UserID)
		c.Locals(LocalsUsername, claims.Username)
		c.Locals(LocalsIsAdmin, claims.IsAdmin)
		return c.Next()
	}
}

// OptionalAuthenticate annotates the request with the caller's identity when
// a valid token is present and passes through otherwise.
func OptionalAuthenticate(tm *service.TokenManager) fiber.Handler {
	return func(c fiber.Ctx) error {
		if claims, ok := bearerClaims(c, tm); ok {
			c.Locals(LocalsUserID, claims.UserID)
			c.Locals(LocalsUsername, claims.Username)
			c.Locals(LocalsIsAdmin, claims.IsAdmin)
		}
		return c.Next()
	}
}

// RequireAdmin requires an authenticated admin. Must run after Authenticate.
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		isAdmin, _ := c.Locals(LocalsIsAdmin).(bool)
		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "admin privileges required",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id from locals, or 0 when the
// request is anonymous.
func UserID(c fiber.Ctx) int {
	id, _ := c.Locals(LocalsUserID).(int)
	return id
}

// HistoryUserID returns the history key for the request: the user id as a
// string, or "anonymous".
func HistoryUserID(c fiber.Ctx) string {
	if id := UserID(c); id != 0 {
		return strconv.Itoa(id)
	}
	return "anonymous"
}

func bearerClaims(c fiber.Ctx, tm *service.TokenManager) (*service.AccessClaims, bool) {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, false
	}
	claims, err := tm.VerifyAccessToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
