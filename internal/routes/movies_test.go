package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myflix/movie-api/internal/models"
)

// TestMovies_RequireAuth tests that every catalog route is gated
func TestMovies_RequireAuth(t *testing.T) {
	env := newTestEnv(t)
	env.seedMovies(t)

	for _, path := range []string{
		"/movies",
		"/movies/movie-1",
		"/movies/genre/Thriller",
		"/movies/director/Christopher%20Nolan",
	} {
		resp := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

// TestMovies_List tests the full catalog listing
func TestMovies_List(t *testing.T) {
	env := newTestEnv(t)
	env.seedMovies(t)
	token := env.seedUser(t, "user-1", "alicejones", "password123")

	resp := env.do(t, http.MethodGet, "/movies", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var movies []models.Movie
	decodeJSON(t, resp, &movies)
	assert.Len(t, movies, 2)
}

// TestMovies_Get tests single movie lookup and its 404 message
func TestMovies_Get(t *testing.T) {
	env := newTestEnv(t)
	env.seedMovies(t)
	token := env.seedUser(t, "user-1", "alicejones", "password123")

	resp := env.do(t, http.MethodGet, "/movies/movie-1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var movie models.Movie
	decodeJSON(t, resp, &movie)
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, "Christopher Nolan", movie.Director.Name)

	missing := env.do(t, http.MethodGet, "/movies/no-such-movie", token, nil)
	require.Equal(t, http.StatusNotFound, missing.StatusCode)

	code, message := decodeError(t, missing)
	assert.Equal(t, "NOT_FOUND", code)
	assert.Equal(t, "This movie is not in the database. Please try another movie!", message)
}

// TestMovies_GenreByName tests the genre subdocument lookup
func TestMovies_GenreByName(t *testing.T) {
	env := newTestEnv(t)
	env.seedMovies(t)
	token := env.seedUser(t, "user-1", "alicejones", "password123")

	resp := env.do(t, http.MethodGet, "/movies/genre/Thriller", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var genre models.Genre
	decodeJSON(t, resp, &genre)
	assert.Equal(t, "Thriller", genre.Name)
	assert.Equal(t, "Suspense driven.", genre.Description)

	missing := env.do(t, http.MethodGet, "/movies/genre/Western", token, nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

// TestMovies_DirectorByName tests the director subdocument lookup,
// including a URL-encoded space in the path segment
func TestMovies_DirectorByName(t *testing.T) {
	env := newTestEnv(t)
	env.seedMovies(t)
	token := env.seedUser(t, "user-1", "alicejones", "password123")

	resp := env.do(t, http.MethodGet, "/movies/director/Christopher%20Nolan", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var director models.Director
	decodeJSON(t, resp, &director)
	assert.Equal(t, "Christopher Nolan", director.Name)
	assert.Equal(t, "British-American filmmaker.", director.Bio)

	missing := env.do(t, http.MethodGet, "/movies/director/Nobody", token, nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

// TestMovies_RouteOrder tests that literal segments win over the id route
func TestMovies_RouteOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "user-1", "alicejones", "password123")

	// With no movie seeded, a genre lookup must hit the genre handler
	// and produce its 404, not fall through to the :id route.
	resp := env.do(t, http.MethodGet, "/movies/genre/Thriller", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, message := decodeError(t, resp)
	assert.NotEqual(t, "This movie is not in the database. Please try another movie!", message)
}
