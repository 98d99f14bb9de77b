package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommendation-backend/internal/config"
	"movie-recommendation-backend/internal/models"
	"movie-recommendation-backend/internal/service"
)

func newAuthApp(t *testing.T) (*fiber.App, *service.TokenManager) {
	t.Helper()
	tm := service.NewTokenManager(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})

	app := fiber.New()
	app.Get("/private", Authenticate(tm), func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": UserID(c)})
	})
	app.Get("/open", OptionalAuthenticate(tm), func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"history_user": HistoryUserID(c)})
	})
	app.Get("/admin", Authenticate(tm), RequireAdmin(), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, tm
}

func accessToken(t *testing.T, tm *service.TokenManager, user models.User) string {
	t.Helper()
	pair, err := tm.GenerateTokens(user)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	app, tm := newAuthApp(t)
	token := accessToken(t, tm, models.User{ID: 5, Username: "u"})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", token) // no Bearer prefix
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	app, tm := newAuthApp(t)
	token := accessToken(t, tm, models.User{ID: 5, Username: "kinoman"})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalAuthenticatePassesAnonymous(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalAuthenticateIgnoresBadToken(t *testing.T) {
	app, _ := newAuthApp(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	app, tm := newAuthApp(t)

	plain := accessToken(t, tm, models.User{ID: 5, Username: "kinoman"})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+plain)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := accessToken(t, tm, models.User{ID: 1, Username: "root", IsAdmin: true})
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
