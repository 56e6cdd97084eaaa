package console

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/playwithllm/console/pkg/transcript"
)

// ChatStateResponse is the support-chat view model: the transcript, the
// live draft and the input gating flags.
type ChatStateResponse struct {
	transcript.Snapshot
	Connected bool `json:"connected"`
}

func (s *Server) supportPageHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, PageView{Page: "support", Data: ChatStateResponse{
		Snapshot:  s.chat.Snapshot(),
		Connected: s.sessions.Connected(),
	}})
}

func (s *Server) chatStateHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, ChatStateResponse{
		Snapshot:  s.chat.Snapshot(),
		Connected: s.sessions.Connected(),
	})
}

// ChatSubmitRequest is the body for POST /console/api/chat.
type ChatSubmitRequest struct {
	Message     string `json:"message"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

func (s *Server) chatSubmitHandler(c *echo.Context) error {
	var req ChatSubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.chat.Submit(req.Message, req.ImageBase64); err != nil {
		return mapChatError(err)
	}
	return c.JSON(http.StatusAccepted, ChatStateResponse{
		Snapshot:  s.chat.Snapshot(),
		Connected: s.sessions.Connected(),
	})
}
