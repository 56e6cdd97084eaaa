// Package console is the view/navigation layer: the route table, the
// identity guard and the page handlers that bind the gateway client,
// identity provider, session manager and transcript assembler into view
// models. Pure glue — all domain behavior lives in the packages it binds.
package console

import (
	"context"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/playwithllm/console/pkg/config"
	"github.com/playwithllm/console/pkg/gateway"
	"github.com/playwithllm/console/pkg/identity"
	"github.com/playwithllm/console/pkg/session"
	"github.com/playwithllm/console/pkg/transcript"
)

// Server is the console HTTP server.
type Server struct {
	echo     *echo.Echo
	http     *http.Server
	cfg      config.Config
	gw       *gateway.Client
	identity *identity.Provider
	sessions *session.Manager
	chat     *transcript.Assembler
}

// NewServer wires the route table.
func NewServer(
	cfg config.Config,
	gw *gateway.Client,
	provider *identity.Provider,
	sessions *session.Manager,
	chat *transcript.Assembler,
) *Server {
	s := &Server{
		echo:     echo.New(),
		cfg:      cfg,
		gw:       gw,
		identity: provider,
		sessions: sessions,
		chat:     chat,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.Use(securityHeaders())

	e.GET("/health", s.healthHandler)

	// Public routes — reachable signed out.
	e.GET("/", func(c *echo.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard")
	})
	e.GET("/login", s.loginPageHandler)
	e.GET("/register", s.registerPageHandler)
	e.GET("/resend-verification", s.resendVerificationPageHandler)
	e.GET("/verify-email", s.verifyEmailHandler)
	e.POST("/console/api/login", s.loginHandler)
	e.POST("/console/api/register", s.registerHandler)
	e.POST("/console/api/resend-verification", s.resendVerificationHandler)

	// Guarded pages — redirect to the sign-in route while identity is
	// absent or still loading.
	pages := e.Group("", s.requirePage())
	pages.GET("/dashboard", s.dashboardHandler)
	pages.GET("/api-keys", s.apiKeysPageHandler)
	pages.GET("/requests", s.requestsPageHandler)
	pages.GET("/usage", s.usagePageHandler)
	pages.GET("/cost", s.costPageHandler)
	pages.GET("/billing", s.billingPageHandler)
	pages.GET("/profile", s.profilePageHandler)
	pages.GET("/support", s.supportPageHandler)
	pages.GET("/prompt", s.promptPageHandler)

	// Guarded JSON API — 401 instead of redirect.
	api := e.Group("/console/api", s.requireAPI())
	api.POST("/logout", s.logoutHandler)
	api.GET("/me", s.meHandler)
	api.POST("/api-keys", s.createAPIKeyHandler)
	api.POST("/api-keys/:id/revoke", s.revokeAPIKeyHandler)
	api.GET("/chat", s.chatStateHandler)
	api.POST("/chat", s.chatSubmitHandler)
	api.POST("/prompt", s.promptGenerateHandler)
	api.GET("/products", s.productSearchHandler)
	api.POST("/products/search-image", s.productImageSearchHandler)
}

// Start begins serving on addr. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.echo}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// ServeHTTP allows tests to drive the route table without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
