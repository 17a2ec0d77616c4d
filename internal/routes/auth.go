package routes

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/myflix/movie-api/internal/auth"
	"github.com/myflix/movie-api/internal/metrics"
	"github.com/myflix/movie-api/internal/models"
	"github.com/myflix/movie-api/internal/store"
	"github.com/myflix/movie-api/pkg/errors"
)

// AuthHandler handles the login endpoint
type AuthHandler struct {
	users  store.UserStore
	codec  *auth.Codec
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users store.UserStore, codec *auth.Codec, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		codec:  codec,
		logger: logger,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticate user and return a JWT token valid for 7 days
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} errors.ErrorResponse "Invalid request"
// @Failure 401 {object} errors.ErrorResponse "Invalid credentials"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondCode(c, errors.CodeBadRequest, "Invalid request body")
	}

	// Look up by username. A missing user and a wrong password use
	// the exact same rejection so the response never reveals which
	// field was wrong.
	user, err := h.users.GetByUsername(c.Context(), req.Username)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			h.logger.WithField("username", req.Username).Warn("Login attempt for unknown username")
			metrics.RecordAuthAttempt("invalid_credentials")
			return respondCode(c, errors.CodeInvalidCredentials, "Invalid username or password")
		}
		h.logger.WithError(err).Error("Failed to look up user for login")
		metrics.RecordAuthAttempt("error")
		return respondError(c, err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		h.logger.WithField("username", req.Username).Warn("Login attempt with invalid password")
		metrics.RecordAuthAttempt("invalid_credentials")
		return respondCode(c, errors.CodeInvalidCredentials, "Invalid username or password")
	}

	token, _, err := h.codec.Issue(user.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue token")
		metrics.RecordAuthAttempt("error")
		return respondError(c, err)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"username": user.Username,
	}).Info("User logged in successfully")
	metrics.RecordAuthAttempt("success")

	return c.JSON(models.LoginResponse{
		User:  user,
		Token: token,
	})
}
