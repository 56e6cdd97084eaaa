package console

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/playwithllm/console/pkg/gateway"
	"github.com/playwithllm/console/pkg/transcript"
)

// mapGatewayError maps upstream call failures to HTTP error responses.
// Structured gateway errors pass their status and message through;
// transport failures surface as 502 with a generic message.
func mapGatewayError(err error) *echo.HTTPError {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return echo.NewHTTPError(apiErr.StatusCode, apiErr.Message)
	}

	slog.Error("Gateway call failed", "error", err)
	return echo.NewHTTPError(http.StatusBadGateway, "upstream gateway unavailable")
}

// mapChatError maps transcript submission failures to HTTP error responses.
func mapChatError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, transcript.ErrEmptyMessage):
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	case errors.Is(err, transcript.ErrBusy):
		return echo.NewHTTPError(http.StatusConflict, "a reply is already in progress")
	case errors.Is(err, transcript.ErrDisabled):
		return echo.NewHTTPError(http.StatusLocked, err.Error())
	}

	slog.Error("Chat submit failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "failed to send message")
}
