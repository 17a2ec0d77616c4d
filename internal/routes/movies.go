package routes

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/myflix/movie-api/internal/store"
	"github.com/myflix/movie-api/pkg/errors"
)

// MovieHandler serves the read-only catalog
type MovieHandler struct {
	movies store.MovieStore
	logger *logrus.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(movies store.MovieStore, logger *logrus.Logger) *MovieHandler {
	return &MovieHandler{
		movies: movies,
		logger: logger,
	}
}

// List returns all movies with embedded director, genre, and cast
// @Summary List movies
// @Tags Movies
// @Produce json
// @Security Bearer
// @Success 200 {array} models.Movie
// @Router /movies [get]
func (h *MovieHandler) List(c *fiber.Ctx) error {
	movies, err := h.movies.List(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list movies")
		return respondError(c, err)
	}

	return c.JSON(movies)
}

// Get returns a single movie
// @Summary Fetch one movie
// @Tags Movies
// @Produce json
// @Security Bearer
// @Param id path string true "Movie id"
// @Success 200 {object} models.Movie
// @Failure 404 {object} errors.ErrorResponse "Movie not found"
// @Router /movies/{id} [get]
func (h *MovieHandler) Get(c *fiber.Ctx) error {
	movie, err := h.movies.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return respondCode(c, errors.CodeNotFound, "This movie is not in the database. Please try another movie!")
		}
		h.logger.WithError(err).Error("Failed to fetch movie")
		return respondError(c, err)
	}

	return c.JSON(movie)
}

// GetGenre returns a genre by name
// @Summary Fetch genre by name
// @Tags Movies
// @Produce json
// @Security Bearer
// @Param name path string true "Genre name"
// @Success 200 {object} models.Genre
// @Failure 404 {object} errors.ErrorResponse "Genre not found"
// @Router /movies/genre/{name} [get]
func (h *MovieHandler) GetGenre(c *fiber.Ctx) error {
	genre, err := h.movies.GetGenreByName(c.Context(), c.Params("name"))
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return respondCode(c, errors.CodeNotFound, "There is no info about this genre in the database")
		}
		h.logger.WithError(err).Error("Failed to fetch genre")
		return respondError(c, err)
	}

	return c.JSON(genre)
}

// GetDirector returns a director by name
// @Summary Fetch director by name
// @Tags Movies
// @Produce json
// @Security Bearer
// @Param name path string true "Director name"
// @Success 200 {object} models.Director
// @Failure 404 {object} errors.ErrorResponse "Director not found"
// @Router /movies/director/{name} [get]
func (h *MovieHandler) GetDirector(c *fiber.Ctx) error {
	director, err := h.movies.GetDirectorByName(c.Context(), c.Params("name"))
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return respondCode(c, errors.CodeNotFound, "There is no information about "+c.Params("name")+" in this database")
		}
		h.logger.WithError(err).Error("Failed to fetch director")
		return respondError(c, err)
	}

	return c.JSON(director)
}
