package console

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// CreateAPIKeyRequest is the body for POST /console/api/api-keys.
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

func (s *Server) createAPIKeyHandler(c *echo.Context) error {
	var req CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	// The response carries the full secret exactly once. It is passed
	// straight through and never retained on this side.
	created, err := s.gw.CreateAPIKey(c.Request().Context(), req.Name)
	if err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) revokeAPIKeyHandler(c *echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key id is required")
	}
	if err := s.gw.RevokeAPIKey(c.Request().Context(), id); err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "revoked"})
}
