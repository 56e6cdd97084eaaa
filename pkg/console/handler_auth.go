package console

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// LoginRequest is the body for POST /console/api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse mirrors the discriminated login result. Reason is set for
// failures the view must branch on (e.g. "email-not-verified", which
// offers a resend-verification action).
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (s *Server) loginHandler(c *echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	result, err := s.identity.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapGatewayError(err)
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}
	return c.JSON(status, LoginResponse{
		Success: result.Success,
		Message: result.Message,
		Reason:  result.Reason,
	})
}

func (s *Server) logoutHandler(c *echo.Context) error {
	s.identity.Logout(c.Request().Context())
	// The sign-in route is where a signed-out client belongs next.
	return c.JSON(http.StatusOK, map[string]string{"redirect": "/login"})
}

// RegisterRequest is the body for POST /console/api/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse reports the registration outcome. Registration never
// signs the account in.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (s *Server) registerHandler(c *echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}

	result, err := s.identity.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return mapGatewayError(err)
	}

	status := http.StatusCreated
	if !result.Success {
		status = http.StatusBadRequest
	}
	return c.JSON(status, RegisterResponse{Success: result.Success, Message: result.Message})
}

func (s *Server) resendVerificationHandler(c *echo.Context) error {
	if err := s.gw.ResendVerification(c.Request().Context()); err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "verification email sent"})
}

func (s *Server) verifyEmailHandler(c *echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}
	if err := s.gw.VerifyEmail(c.Request().Context(), token); err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "email verified"})
}

func (s *Server) meHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.identity.Current())
}
