package console

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/playwithllm/console/pkg/models"
)

// Page handlers return the view models the original console pages render.
// No markup — the console front end owns presentation.

// PageView wraps a page's view model with its route name.
type PageView struct {
	Page string `json:"page"`
	Data any    `json:"data,omitempty"`
}

func (s *Server) loginPageHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, PageView{Page: "login"})
}

func (s *Server) registerPageHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, PageView{Page: "register"})
}

func (s *Server) resendVerificationPageHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, PageView{Page: "resend-verification"})
}

// DashboardView combines the aggregates the landing page shows.
type DashboardView struct {
	Identity *models.Identity          `json:"identity"`
	Usage    *models.UsageSummary      `json:"usage"`
	Recent   []models.InferenceRequest `json:"recent"`
}

func (s *Server) dashboardHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	usage, err := s.gw.UsageSummary(ctx)
	if err != nil {
		return mapGatewayError(err)
	}
	recent, err := s.gw.SearchInference(ctx)
	if err != nil {
		return mapGatewayError(err)
	}
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return c.JSON(http.StatusOK, PageView{Page: "dashboard", Data: DashboardView{
		Identity: s.identity.Current(),
		Usage:    usage,
		Recent:   recent,
	}})
}

func (s *Server) apiKeysPageHandler(c *echo.Context) error {
	keys, err := s.gw.SearchAPIKeys(c.Request().Context())
	if err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, PageView{Page: "api-keys", Data: keys})
}

func (s *Server) requestsPageHandler(c *echo.Context) error {
	reqs, err := s.gw.SearchInference(c.Request().Context())
	if err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, PageView{Page: "requests", Data: reqs})
}

func (s *Server) usagePageHandler(c *echo.Context) error {
	return s.usageView(c, "usage")
}

func (s *Server) costPageHandler(c *echo.Context) error {
	return s.usageView(c, "cost")
}

func (s *Server) billingPageHandler(c *echo.Context) error {
	return s.usageView(c, "billing")
}

// usageView serves the three aggregate dashboards, which differ only in
// which fields the front end highlights.
func (s *Server) usageView(c *echo.Context, page string) error {
	usage, err := s.gw.UsageSummary(c.Request().Context())
	if err != nil {
		return mapGatewayError(err)
	}
	return c.JSON(http.StatusOK, PageView{Page: page, Data: usage})
}

func (s *Server) profilePageHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, PageView{Page: "profile", Data: s.identity.Current()})
}

// PromptPageView backs the prompt-testing console: prior exchanges plus
// the model picker.
type PromptPageView struct {
	Prompts []models.InferenceRequest `json:"prompts"`
	Models  []models.Model            `json:"models"`
}

func (s *Server) promptPageHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	prompts, err := s.gw.SearchInference(ctx)
	if err != nil {
		return mapGatewayError(err)
	}
	ms, err := s.gw.AvailableModels(ctx)
	if err != nil {
		return mapGatewayError(err)
	}

	return c.JSON(http.StatusOK, PageView{Page: "prompt", Data: PromptPageView{
		Prompts: prompts,
		Models:  ms,
	}})
}
