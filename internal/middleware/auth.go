package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/myflix/movie-api/internal/auth"
	"github.com/myflix/movie-api/internal/metrics"
	"github.com/myflix/movie-api/internal/models"
	"github.com/myflix/movie-api/internal/store"
)

const currentUserKey = "current_user"

// AuthMiddleware gates protected routes: it extracts the bearer
// token, verifies it against the codec, resolves the subject to a
// concrete user record, and attaches that user to the request
// context. Downstream handlers never run on a rejected token.
type AuthMiddleware struct {
	codec  *auth.Codec
	users  store.UserStore
	logger *logrus.Logger
}

func NewAuthMiddleware(codec *auth.Codec, users store.UserStore, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		codec:  codec,
		users:  users,
		logger: logger,
	}
}

// Authenticate is the bearer-token gate applied to protected routes.
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Extract token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return a.unauthorizedError(c, "MISSING_AUTHORIZATION", "Authorization header is required")
		}

		// Check Bearer token format
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return a.unauthorizedError(c, "INVALID_TOKEN_FORMAT", "Authorization header must be Bearer token")
		}

		tokenString := authHeader[len(bearerPrefix):]
		if tokenString == "" {
			return a.unauthorizedError(c, "MISSING_TOKEN", "Token is required")
		}

		userID, err := a.codec.Verify(tokenString)
		if err != nil {
			a.logger.WithError(err).WithField("path", c.Path()).Debug("Token validation failed")

			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				metrics.RecordTokenVerification("expired")
				return a.unauthorizedError(c, "TOKEN_EXPIRED", "Token has expired")
			case errors.Is(err, auth.ErrTokenSignature):
				metrics.RecordTokenVerification("signature")
			default:
				metrics.RecordTokenVerification("malformed")
			}
			return a.unauthorizedError(c, "INVALID_TOKEN", "Token validation failed")
		}

		// Resolve the subject claim to a concrete user. A token for a
		// deleted account is rejected the same way as a bad token.
		user, err := a.users.GetByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				metrics.RecordTokenVerification("unknown_subject")
				return a.unauthorizedError(c, "INVALID_TOKEN", "Token validation failed")
			}
			a.logger.WithError(err).WithField("user_id", userID).Error("Failed to resolve token subject")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "INTERNAL_ERROR",
					"message": "Internal server error",
				},
			})
		}

		metrics.RecordTokenVerification("success")

		// Set user context
		c.Locals(currentUserKey, user)
		c.Locals("user_id", user.UserID)

		return c.Next()
	}
}

// unauthorizedError returns a standardized unauthorized error response
func (a *AuthMiddleware) unauthorizedError(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"code":     code,
			"message":  message,
			"trace_id": c.Get("X-Request-ID"),
		},
	})
}

// CurrentUser extracts the authenticated user from context
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(currentUserKey).(*models.User); ok {
		return user
	}
	return nil
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("user_id").(string); ok {
		return userID
	}
	return ""
}
