package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"trackmymess/internal/services"
)

// CustomErrorHandler maps service-level errors onto JSON error responses.
// Anything outside the known taxonomy is logged and reported generically
// so store internals never leak to callers.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrInvalidCapacity),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidOwner),
		errors.Is(err, services.ErrMessRequired):
		code = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrMessNotFound),
		errors.Is(err, services.ErrOwnerNotFound),
		errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrUserNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrOwnerAlreadyAssigned),
		errors.Is(err, services.ErrMessAlreadyOwned),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrMessFull):
		code = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		code = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, services.ErrAccountBlocked),
		errors.Is(err, services.ErrSubscriptionExpired),
		errors.Is(err, services.ErrForbidden):
		code = http.StatusForbidden
		message = err.Error()
	default:
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err)
	}

	if writeErr := c.JSON(code, map[string]string{"error": message}); writeErr != nil {
		slog.Error("failed to write error response", "error", writeErr)
	}
}
