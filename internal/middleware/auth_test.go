package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myflix/movie-api/internal/auth"
	"github.com/myflix/movie-api/internal/config"
	"github.com/myflix/movie-api/internal/models"
	"github.com/myflix/movie-api/internal/store"
)

func testCodec() *auth.Codec {
	return auth.NewCodec(&config.JWTConfig{
		Secret:   "test-secret-key-for-unit-tests",
		TTL:      time.Hour,
		Issuer:   "myflix-api",
		Audience: "myflix-clients",
	})
}

func newAuthApp(t *testing.T) (*fiber.App, *auth.Codec, *store.MemoryUserStore) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := store.NewMemoryUserStore()
	require.NoError(t, users.Create(context.Background(), &models.User{
		UserID:   "user-1",
		Username: "alice",
	}))

	codec := testCodec()
	app := fiber.New()
	app.Use(NewAuthMiddleware(codec, users, logger).Authenticate())
	app.Get("/protected", func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		require.NotNil(t, user)
		return c.JSON(fiber.Map{
			"user_id":  GetUserID(c),
			"username": user.Username,
		})
	})

	return app, codec, users
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error.Code
}

// TestAuthenticate_ValidToken tests that a valid bearer passes through
func TestAuthenticate_ValidToken(t *testing.T) {
	app, codec, _ := newAuthApp(t)

	token, _, err := codec.Issue("user-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, "alice", body["username"])
}

// TestAuthenticate_Rejections tests the rejection matrix
func TestAuthenticate_Rejections(t *testing.T) {
	app, codec, _ := newAuthApp(t)

	expiredCodec := auth.NewCodec(&config.JWTConfig{
		Secret:   "test-secret-key-for-unit-tests",
		TTL:      -time.Minute,
		Issuer:   "myflix-api",
		Audience: "myflix-clients",
	})
	expiredToken, _, err := expiredCodec.Issue("user-1")
	require.NoError(t, err)

	foreignCodec := auth.NewCodec(&config.JWTConfig{
		Secret:   "some-other-secret-entirely",
		TTL:      time.Hour,
		Issuer:   "myflix-api",
		Audience: "myflix-clients",
	})
	foreignToken, _, err := foreignCodec.Issue("user-1")
	require.NoError(t, err)

	validToken, _, err := codec.Issue("user-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing header", header: "", code: "MISSING_AUTHORIZATION"},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz", code: "INVALID_TOKEN_FORMAT"},
		{name: "bare scheme", header: "Bearer", code: "INVALID_TOKEN_FORMAT"},
		{name: "garbage token", header: "Bearer not.a.token", code: "INVALID_TOKEN"},
		{name: "expired token", header: "Bearer " + expiredToken, code: "TOKEN_EXPIRED"},
		{name: "wrong signature", header: "Bearer " + foreignToken, code: "INVALID_TOKEN"},
		{name: "tampered token", header: "Bearer " + validToken + "x", code: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, resp))
		})
	}
}

// TestAuthenticate_DeletedSubject tests that a token for a removed account is rejected
func TestAuthenticate_DeletedSubject(t *testing.T) {
	app, codec, users := newAuthApp(t)

	token, _, err := codec.Issue("user-1")
	require.NoError(t, err)

	_, err = users.Delete(context.Background(), "user-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}
