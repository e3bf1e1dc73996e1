package httpserver

import (
	"net/http"

	apperrors "github.com/csentein/P6-Sentein-Clement/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

func (s *Server) handleSignup(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	acc, err := s.app.Signup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, signupResponse{Message: "account created", UserID: acc.ID.String()})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	res, err := s.app.Login(c.Request().Context(), c.RealIP(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
