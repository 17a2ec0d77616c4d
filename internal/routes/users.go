package routes

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/myflix/movie-api/internal/auth"
	"github.com/myflix/movie-api/internal/middleware"
	"github.com/myflix/movie-api/internal/models"
	"github.com/myflix/movie-api/internal/service"
	"github.com/myflix/movie-api/internal/store"
	"github.com/myflix/movie-api/pkg/errors"
)

// UserHandler handles registration, profile, and favorites endpoints
type UserHandler struct {
	users     store.UserStore
	favorites *service.FavoritesService
	logger    *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users store.UserStore, favorites *service.FavoritesService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		favorites: favorites,
		logger:    logger,
	}
}

// Register handles user registration
// @Summary User registration
// @Description Register a new user account
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.User
// @Failure 400 {object} errors.ErrorResponse "Invalid request"
// @Failure 409 {object} errors.ErrorResponse "Username already exists"
// @Failure 422 {object} errors.ErrorResponse "Validation failure"
// @Router /users [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondCode(c, errors.CodeBadRequest, "Invalid request body")
	}

	// Validation happens before any store access.
	if violations := req.Validate(); len(violations) > 0 {
		return respondCode(c, errors.CodeValidationError, strings.Join(violations, "; "))
	}

	// Username uniqueness pre-check. Not atomic against a concurrent
	// registration; the id-level conditional put below still prevents
	// silent overwrites.
	if _, err := h.users.GetByUsername(c.Context(), req.Username); err == nil {
		return respondCode(c, errors.CodeUsernameExists, req.Username+" already exists")
	} else if !stderrors.Is(err, store.ErrNotFound) {
		h.logger.WithError(err).Error("Failed to check username availability")
		return respondError(c, err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		return respondError(c, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		UserID:       uuid.New().String(),
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		Birthdate:    req.Birthdate,
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(c.Context(), user); err != nil {
		if stderrors.Is(err, store.ErrConflict) {
			return respondCode(c, errors.CodeUsernameExists, req.Username+" already exists")
		}
		h.logger.WithError(err).Error("Failed to create user")
		return respondError(c, err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"username": user.Username,
	}).Info("User registered successfully")

	return c.Status(fiber.StatusCreated).JSON(user)
}

// List returns all users
// @Summary List users
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {array} models.User
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		return respondError(c, err)
	}

	return c.JSON(users)
}

// Get returns a single user
// @Summary Fetch one user
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path string true "User id"
// @Success 200 {object} models.User
// @Failure 404 {object} errors.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return respondCode(c, errors.CodeNotFound, "User not found")
		}
		h.logger.WithError(err).Error("Failed to fetch user")
		return respondError(c, err)
	}

	return c.JSON(user)
}

// GetFavorites returns the user's favorite movie titles
// @Summary List favorite movie titles
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path string true "User id"
// @Success 200 {array} string
// @Failure 404 {object} errors.ErrorResponse "User not found"
// @Router /users/{id}/favorites [get]
func (h *UserHandler) GetFavorites(c *fiber.Ctx) error {
	titles, err := h.favorites.Titles(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(titles)
}

// Update handles partial profile updates, owner-only
// @Summary Update profile fields
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User id"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.UserProfile
// @Failure 403 {object} errors.ErrorResponse "Permission denied"
// @Failure 404 {object} errors.ErrorResponse "User not found"
// @Failure 422 {object} errors.ErrorResponse "Validation failure"
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return respondCode(c, errors.CodeBadRequest, "Invalid request body")
	}

	if violations := req.Validate(); len(violations) > 0 {
		return respondCode(c, errors.CodeValidationError, strings.Join(violations, "; "))
	}

	// Owner-only: authenticated identity must match the target id,
	// regardless of body contents.
	if !auth.CanModify(middleware.CurrentUser(c), c.Params("id")) {
		return respondCode(c, errors.CodeForbidden, "Permission denied")
	}

	update := store.UserUpdate{}
	if req.Name != "" {
		update.Name = &req.Name
	}
	if req.Email != "" {
		update.Email = &req.Email
	}
	if req.Username != "" {
		update.Username = &req.Username
	}
	if req.Birthdate != "" {
		update.Birthdate = &req.Birthdate
	}
	if req.Password != "" {
		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.logger.WithError(err).Error("Failed to hash password")
			return respondError(c, err)
		}
		update.PasswordHash = &passwordHash
	}

	user, err := h.users.Update(c.Context(), c.Params("id"), update)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return respondCode(c, errors.CodeNotFound, "The requested user could not be found")
		}
		h.logger.WithError(err).Error("Failed to update user")
		return respondError(c, err)
	}

	return c.JSON(models.UserProfile{
		Name:      user.Name,
		Email:     user.Email,
		Username:  user.Username,
		Birthdate: user.Birthdate,
	})
}

// Delete removes an account, owner-only
// @Summary Delete account
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path string true "User id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse "Permission denied"
// @Failure 404 {object} errors.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if !auth.CanModify(middleware.CurrentUser(c), c.Params("id")) {
		return respondCode(c, errors.CodeForbidden, "Permission denied")
	}

	user, err := h.users.Delete(c.Context(), c.Params("id"))
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return respondCode(c, errors.CodeNotFound, "User not found")
		}
		h.logger.WithError(err).Error("Failed to delete user")
		return respondError(c, err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"username": user.Username,
	}).Info("User account deleted")

	return c.JSON(fiber.Map{
		"message": user.Username + " was deleted from myFlix.",
	})
}

// AddFavorite inserts a movie into the user's favorites set
// @Summary Add favorite
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path string true "User id"
// @Param movieId path string true "Movie id"
// @Success 200 {object} models.User
// @Failure 404 {object} errors.ErrorResponse "User or movie not found"
// @Router /users/{id}/movies/{movieId} [post]
func (h *UserHandler) AddFavorite(c *fiber.Ctx) error {
	user, err := h.favorites.Add(c.Context(), c.Params("id"), c.Params("movieId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}

// RemoveFavorite removes a movie from the user's favorites set
// @Summary Remove favorite
// @Tags Users
// @Produce json
// @Security Bearer
// @Param id path string true "User id"
// @Param movieId path string true "Movie id"
// @Success 200 {object} models.User
// @Failure 404 {object} errors.ErrorResponse "User or movie not found"
// @Router /users/{id}/movies/{movieId} [delete]
func (h *UserHandler) RemoveFavorite(c *fiber.Ctx) error {
	user, err := h.favorites.Remove(c.Context(), c.Params("id"), c.Params("movieId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}
