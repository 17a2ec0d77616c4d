package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/myflix/movie-api/internal/auth"
	"github.com/myflix/movie-api/internal/config"
	"github.com/myflix/movie-api/internal/middleware"
	"github.com/myflix/movie-api/internal/models"
	"github.com/myflix/movie-api/internal/service"
	"github.com/myflix/movie-api/internal/store"
)

// testEnv wires the handlers over in-memory stores, mirroring the
// production route table minus the Redis-backed middleware.
type testEnv struct {
	app    *fiber.App
	users  *store.MemoryUserStore
	movies *store.MemoryMovieStore
	codec  *auth.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := store.NewMemoryUserStore()
	movies := store.NewMemoryMovieStore()
	codec := auth.NewCodec(&config.JWTConfig{
		Secret:   "test-secret-key-for-unit-tests",
		TTL:      time.Hour,
		Issuer:   "myflix-api",
		Audience: "myflix-clients",
	})

	favorites := service.NewFavoritesService(users, movies, logger)
	authHandler := NewAuthHandler(users, codec, logger)
	userHandler := NewUserHandler(users, favorites, logger)
	movieHandler := NewMovieHandler(movies, logger)

	app := fiber.New(fiber.Config{UnescapePath: true})

	app.Post("/login", authHandler.Login)
	app.Post("/users", userHandler.Register)

	protected := app.Group("", middleware.NewAuthMiddleware(codec, users, logger).Authenticate())
	protected.Get("/users", userHandler.List)
	protected.Get("/users/:id", userHandler.Get)
	protected.Get("/users/:id/favorites", userHandler.GetFavorites)
	protected.Put("/users/:id", userHandler.Update)
	protected.Delete("/users/:id", userHandler.Delete)
	protected.Post("/users/:id/movies/:movieId", userHandler.AddFavorite)
	protected.Delete("/users/:id/movies/:movieId", userHandler.RemoveFavorite)
	protected.Get("/movies/genre/:name", movieHandler.GetGenre)
	protected.Get("/movies/director/:name", movieHandler.GetDirector)
	protected.Get("/movies", movieHandler.List)
	protected.Get("/movies/:id", movieHandler.Get)

	return &testEnv{app: app, users: users, movies: movies, codec: codec}
}

// seedUser inserts a user with a usable password hash and returns a
// bearer token for it.
func (e *testEnv) seedUser(t *testing.T, id, username, password string) string {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, e.users.Create(context.Background(), &models.User{
		UserID:       id,
		Name:         "Test User",
		Username:     username,
		PasswordHash: hash,
		Email:        username + "@example.com",
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	token, _, err := e.codec.Issue(id)
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedMovies(t *testing.T) {
	t.Helper()

	e.movies.
		Seed(models.Movie{
			MovieID:     "movie-1",
			Title:       "Inception",
			Description: "A thief who steals corporate secrets through dream-sharing.",
			ReleaseYear: "2010",
			Genre:       models.Genre{Name: "Thriller", Description: "Suspense driven."},
			Director: models.Director{
				Name:      "Christopher Nolan",
				Bio:       "British-American filmmaker.",
				BirthYear: "1970",
			},
		}).
		Seed(models.Movie{
			MovieID:     "movie-2",
			Title:       "Interstellar",
			ReleaseYear: "2014",
			Genre:       models.Genre{Name: "Sci-Fi"},
			Director:    models.Director{Name: "Christopher Nolan"},
		})
}

// do issues a request against the test app. A non-empty token is sent
// as a bearer header; a non-nil body is JSON encoded.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func unmarshalBody(raw []byte, out interface{}) error {
	return json.Unmarshal(raw, out)
}

// decodeError pulls the code and message out of the error envelope.
func decodeError(t *testing.T, resp *http.Response) (string, string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &body)
	return body.Error.Code, body.Error.Message
}
