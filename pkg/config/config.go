// Package config loads console configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds all runtime configuration for the console process.
type Config struct {
	// ListenPort is the port the console HTTP server binds to.
	ListenPort string

	// APIBaseURL is the upstream gateway REST base URL.
	APIBaseURL string

	// RealtimeURL is the upstream realtime (WebSocket) endpoint.
	RealtimeURL string

	// UseDefaultAPIKey omits the x-api-key header on inference requests so
	// the server applies its default key. Mutually exclusive with APIKey.
	UseDefaultAPIKey bool

	// APIKey is the explicit per-request inference key. Ignored when
	// UseDefaultAPIKey is set.
	APIKey string

	// BootstrapTimeout bounds the startup identity fetch.
	BootstrapTimeout time.Duration

	// StreamIdleTimeout bounds the gap between streamed reply fragments
	// before an outstanding draft is discarded as failed.
	StreamIdleTimeout time.Duration

	// WriteTimeout bounds each outbound WebSocket write.
	WriteTimeout time.Duration

	// ReconnectMinBackoff and ReconnectMaxBackoff bound the redial delay
	// after a dropped realtime connection.
	ReconnectMinBackoff time.Duration
	ReconnectMaxBackoff time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	bootstrapTimeout, err := parseDurationEnv("BOOTSTRAP_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	idleTimeout, err := parseDurationEnv("STREAM_IDLE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := parseDurationEnv("WS_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	minBackoff, err := parseDurationEnv("WS_RECONNECT_MIN_BACKOFF", time.Second)
	if err != nil {
		return Config{}, err
	}
	maxBackoff, err := parseDurationEnv("WS_RECONNECT_MAX_BACKOFF", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenPort:          getEnvOrDefault("HTTP_PORT", "8080"),
		APIBaseURL:          getEnvOrDefault("API_BASE_URL", "https://api.playwithllm.com"),
		RealtimeURL:         getEnvOrDefault("REALTIME_URL", "ws://localhost:4001"),
		UseDefaultAPIKey:    os.Getenv("USE_DEFAULT_API_KEY") == "true",
		APIKey:              os.Getenv("PWLM_API_KEY"),
		BootstrapTimeout:    bootstrapTimeout,
		StreamIdleTimeout:   idleTimeout,
		WriteTimeout:        writeTimeout,
		ReconnectMinBackoff: minBackoff,
		ReconnectMaxBackoff: maxBackoff,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c Config) Validate() error {
	if _, err := url.Parse(c.APIBaseURL); err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	u, err := url.Parse(c.RealtimeURL)
	if err != nil {
		return fmt.Errorf("invalid REALTIME_URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("REALTIME_URL must use ws or wss scheme, got %q", u.Scheme)
	}
	if c.StreamIdleTimeout <= 0 {
		return fmt.Errorf("STREAM_IDLE_TIMEOUT must be positive")
	}
	if c.ReconnectMinBackoff > c.ReconnectMaxBackoff {
		return fmt.Errorf("WS_RECONNECT_MIN_BACKOFF exceeds WS_RECONNECT_MAX_BACKOFF")
	}
	return nil
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
