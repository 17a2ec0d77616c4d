package routes

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"

	"github.com/myflix/movie-api/pkg/errors"
)

// respondError writes the standard error envelope for an AppError,
// falling back to a generic 500 for anything unclassified.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewAppError(errors.CodeInternalError, "Internal server error", err)
	}
	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse(c.Get("X-Request-ID")))
}

// respondCode writes the standard error envelope for a bare code.
func respondCode(c *fiber.Ctx, code errors.ErrorCode, message string) error {
	return respondError(c, errors.NewAppError(code, message, nil))
}
