package console

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/playwithllm/console/pkg/version"
)

func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   version.Full(),
		"realtime":  s.sessions.State().String(),
		"identity":  s.identity.IsAuthenticated(),
		"bootstrap": !s.identity.IsLoading(),
	})
}
