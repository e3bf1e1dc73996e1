package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/csentein/P6-Sentein-Clement/internal/account"
	"github.com/csentein/P6-Sentein-Clement/internal/app"
	"github.com/csentein/P6-Sentein-Clement/internal/auth"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/correlation"
	apperrors "github.com/csentein/P6-Sentein-Clement/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

// unauthorizedMessage is shared by every credential and identity failure.
const unauthorizedMessage = "unauthorized request"

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromInbound(c.Request().Header.Get(correlation.Header))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			return HandleError(c, err)
		}
	}
}

// toStructured maps domain and application errors onto the structured
// error taxonomy. Anything unknown becomes an internal error.
func toStructured(err error) *apperrors.Error {
	var structured *apperrors.Error
	if errors.As(err, &structured) {
		return structured
	}

	var throttled *app.ThrottledError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrIdentityMismatch):
		return apperrors.UnauthorizedError(unauthorizedMessage, err)
	case errors.Is(err, app.ErrInvalidLogin):
		return apperrors.UnauthorizedError(app.ErrInvalidLogin.Error(), nil)
	case errors.Is(err, account.ErrWeakPassword):
		return apperrors.UnauthorizedError(err.Error(), nil)
	case errors.Is(err, app.ErrForbidden):
		return apperrors.ForbiddenError(app.ErrForbidden.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		return apperrors.NotFoundError("item not found")
	case errors.Is(err, domain.ErrVoteConflict):
		return apperrors.ConflictError("the vote changed concurrently, please retry", err)
	case errors.As(err, &throttled):
		seconds := int(math.Ceil(throttled.Wait.Seconds()))
		return apperrors.RateLimitedError(throttled.Error()).WithField("retry_after_seconds", seconds)
	case errors.Is(err, domain.ErrInvalidVote),
		errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, app.ErrInvalidItem),
		errors.Is(err, app.ErrInvalidEmail),
		errors.Is(err, app.ErrImageRequired):
		return apperrors.ValidationError(err.Error())
	default:
		return apperrors.AsStructuredError(err)
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if userID := c.Get(userIDKey); userID != nil {
		attrs = append(attrs, "user_id", userID)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeUnauthorized, apperrors.TypeForbidden, apperrors.TypeRateLimited:
		slog.WarnContext(ctx, "Access denied", attrs...)
	case apperrors.TypeConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

// HandleError renders err as a structured JSON error response.
func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	structuredErr := toStructured(err)
	logError(c, structuredErr)

	if seconds, ok := structuredErr.Context["retry_after_seconds"].(int); ok {
		c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}
