package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommendation-backend/internal/models"
)

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    "kino@example.com",
		Username: "kinoman",
		Password: "secret123",
	}
}

func TestValidateRegistrationAccepts(t *testing.T) {
	req := validRegistration()
	req.FullName = "Иван Петров"
	req.AvatarURL = "https://example.com/avatar.png"
	assert.NoError(t, validateRegistration(req))
}

func TestValidateRegistrationRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RegisterRequest)
		detail string
	}{
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short username", func(r *models.RegisterRequest) { r.Username = "ab" }, "username"},
		{"long username", func(r *models.RegisterRequest) { r.Username = strings.Repeat("a", 101) }, "username"},
		{"short password", func(r *models.RegisterRequest) { r.Password = "12345" }, "password"},
		{"long full name", func(r *models.RegisterRequest) { r.FullName = strings.Repeat("n", 256) }, "full name"},
		{"bad avatar url", func(r *models.RegisterRequest) { r.AvatarURL = "ftp://example.com/a.png" }, "avatar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)

			err := validateRegistration(req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, strings.Join(vErr.Errors, "; "), tt.detail)
		})
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	svc := NewAuthService(nil, nil, nil)

	_, err := svc.UpdateProfile(1, models.UpdateProfileRequest{})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors[0], "nothing to update")

	_, err = svc.UpdateProfile(1, models.UpdateProfileRequest{
		Preferences: json.RawMessage(`not json`),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, strings.Join(vErr.Errors, "; "), "preferences")

	_, err = svc.UpdateProfile(1, models.UpdateProfileRequest{
		Preferences: json.RawMessage(`[1,2,3]`),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, strings.Join(vErr.Errors, "; "), "preferences")
}

func TestIsJSONObject(t *testing.T) {
	assert.True(t, isJSONObject([]byte(`{}`)))
	assert.True(t, isJSONObject([]byte(` {"favorite_genres":["драма"]} `)))
	assert.False(t, isJSONObject([]byte(`[1,2]`)))
	assert.False(t, isJSONObject([]byte(`"string"`)))
	assert.False(t, isJSONObject([]byte(`{broken`)))
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, isValidURL("https://example.com/a.png"))
	assert.True(t, isValidURL("http://example.com"))
	assert.False(t, isValidURL("ftp://example.com"))
	assert.False(t, isValidURL("example.com/a.png"))
	assert.False(t, isValidURL("://broken"))
}
