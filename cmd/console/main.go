// Play with LLM admin console — serves the console HTTP surface and owns
// the realtime session to the inference gateway.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/playwithllm/console/pkg/config"
	"github.com/playwithllm/console/pkg/console"
	"github.com/playwithllm/console/pkg/gateway"
	"github.com/playwithllm/console/pkg/identity"
	"github.com/playwithllm/console/pkg/session"
	"github.com/playwithllm/console/pkg/transcript"
	"github.com/playwithllm/console/pkg/version"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to .env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", *envFile, "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting console",
		"version", version.Full(),
		"http_port", cfg.ListenPort,
		"api_base_url", cfg.APIBaseURL,
		"realtime_url", cfg.RealtimeURL)

	ctx := context.Background()

	// 1. Gateway client
	gwOpts := []gateway.Option{}
	if cfg.UseDefaultAPIKey {
		gwOpts = append(gwOpts, gateway.WithDefaultAPIKey())
	} else if cfg.APIKey != "" {
		gwOpts = append(gwOpts, gateway.WithAPIKey(cfg.APIKey))
	}
	gw, err := gateway.NewClient(cfg.APIBaseURL, gwOpts...)
	if err != nil {
		slog.Error("Failed to create gateway client", "error", err)
		os.Exit(1)
	}

	// 2. Session manager and identity provider
	sessions := session.NewManager(cfg.RealtimeURL,
		session.WithWriteTimeout(cfg.WriteTimeout),
		session.WithBackoff(cfg.ReconnectMinBackoff, cfg.ReconnectMaxBackoff))
	provider := identity.NewProvider(gw, sessions, cfg.BootstrapTimeout)

	// 3. Support-chat transcript, bound to the session event stream
	chat := transcript.NewAssembler(sessions, session.EventInferenceRequest,
		transcript.WithIdleTimeout(cfg.StreamIdleTimeout))
	binding := transcript.Bind(chat, sessions)
	defer binding.Release()

	// 4. Bootstrap identity (one fetch; initializes the session when an
	// identity is already signed in)
	provider.Start(ctx)

	// 5. HTTP server
	srv := console.NewServer(cfg, gw, provider, sessions, chat)
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ListenPort
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	// 6. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 7. Graceful shutdown: HTTP first, then the realtime session
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	sessions.Teardown()

	slog.Info("Shutdown complete")
}
