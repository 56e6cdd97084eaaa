package console

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/playwithllm/console/pkg/gateway"
	"github.com/playwithllm/console/pkg/transcript"
)

// PromptGenerateRequest is the body for POST /console/api/prompt.
type PromptGenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	Image  string `json:"image,omitempty"`
}

// promptGenerateHandler submits a one-shot inference request and relays the
// growing response body to the client as it arrives. The upstream delivery
// is adapted into the push-based chunk/end flow so this path shares the
// socket path's model instead of a second state machine.
func (s *Server) promptGenerateHandler(c *echo.Context) error {
	var req PromptGenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	w := c.Response()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := http.ResponseWriter(w).(http.Flusher)
	stream := transcript.NewHTTPStream(&relaySink{w: w, flusher: flusher})

	_, err := s.gw.Generate(c.Request().Context(), gateway.GenerateRequest{
		Prompt: req.Prompt,
		Model:  req.Model,
		Image:  req.Image,
	}, stream.Progress)
	stream.Finish()
	if err != nil {
		// Headers are already out; the trailing marker is all that can
		// signal the failure to the consuming page.
		_, _ = w.Write([]byte("\nError occurred while processing request."))
		return nil
	}
	return nil
}

// relaySink forwards each fragment to the HTTP response, flushing so the
// page re-renders on every growth event.
type relaySink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (r *relaySink) HandleChunk(fragment string) {
	_, _ = r.w.Write([]byte(fragment))
	if r.flusher != nil {
		r.flusher.Flush()
	}
}

func (r *relaySink) HandleEnd() {}
