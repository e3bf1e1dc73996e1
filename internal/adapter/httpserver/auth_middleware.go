package httpserver

import (
	"errors"

	"github.com/csentein/P6-Sentein-Clement/internal/auth"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/logging"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// requireAuth rejects requests without a valid bearer token before any
// handler or store runs, and records the subject on the echo context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		subject, err := s.guard.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			s.authMetrics.Rejections.WithLabelValues("unauthenticated").Inc()
			return err
		}

		c.Set(userIDKey, subject)
		logging.WithUser(subject).DebugContext(c.Request().Context(), "Request authenticated", "path", c.Path())
		return next(c)
	}
}

func subjectFrom(c echo.Context) string {
	subject, _ := c.Get(userIDKey).(string)
	return subject
}

// checkClaim compares a payload userId against the authenticated subject.
func (s *Server) checkClaim(c echo.Context, claimed string) error {
	err := auth.CheckClaim(subjectFrom(c), claimed)
	if errors.Is(err, auth.ErrIdentityMismatch) {
		s.authMetrics.Rejections.WithLabelValues("identity_mismatch").Inc()
	}
	return err
}
