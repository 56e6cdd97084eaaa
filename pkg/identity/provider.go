// Package identity holds the process-wide authenticated identity and
// drives the realtime session lifecycle from it.
package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/playwithllm/console/pkg/gateway"
	"github.com/playwithllm/console/pkg/models"
)

// Authenticator is the gateway surface the provider consumes.
type Authenticator interface {
	FetchCurrentIdentity(ctx context.Context) (*models.Identity, error)
	Login(ctx context.Context, email, password string) (gateway.LoginResult, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, name, email, password string) (gateway.RegisterResult, error)
}

// SessionLifecycle is the subset of the session manager the provider
// drives: a session is initialized when an identity becomes known and torn
// down when it is cleared.
type SessionLifecycle interface {
	Initialize(ctx context.Context, identityID string)
	Teardown()
}

// Provider owns the current identity. All other components read it through
// Current/IsAuthenticated and never mutate it.
type Provider struct {
	auth             Authenticator
	sessions         SessionLifecycle
	bootstrapTimeout time.Duration

	mu           sync.RWMutex
	identity     *models.Identity
	loading      bool
	bootstrapped bool
	runCtx       context.Context
}

// NewProvider creates a provider. IsLoading reports true until Start's
// bootstrap fetch resolves.
func NewProvider(auth Authenticator, sessions SessionLifecycle, bootstrapTimeout time.Duration) *Provider {
	return &Provider{
		auth:             auth,
		sessions:         sessions,
		bootstrapTimeout: bootstrapTimeout,
		loading:          true,
		runCtx:           context.Background(),
	}
}

// Start performs the single bootstrap identity fetch. A 401 or transport
// failure both resolve to signed-out; neither is fatal. Subsequent calls
// are no-ops.
func (p *Provider) Start(ctx context.Context) {
	p.mu.Lock()
	if p.bootstrapped {
		p.mu.Unlock()
		return
	}
	p.bootstrapped = true
	p.runCtx = ctx
	p.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, p.bootstrapTimeout)
	defer cancel()

	ident, err := p.auth.FetchCurrentIdentity(fetchCtx)
	if err != nil {
		slog.Warn("Identity bootstrap failed — starting signed out", "error", err)
	}

	p.mu.Lock()
	p.identity = ident
	p.loading = false
	p.mu.Unlock()

	if ident != nil {
		slog.Info("Identity bootstrapped", "user_id", ident.ID)
		p.sessions.Initialize(ctx, ident.ID)
	}
}

// IsLoading reports whether the bootstrap fetch is still in flight.
func (p *Provider) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Current returns the authenticated identity, or nil when signed out.
func (p *Provider) Current() *models.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.identity == nil {
		return nil
	}
	ident := *p.identity
	return &ident
}

// IsAuthenticated reports whether an identity is present.
func (p *Provider) IsAuthenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.identity != nil
}

// Login authenticates and, on success, stores the identity and initializes
// the realtime session keyed by it. Authentication failures are folded into
// the result; only transport failures return an error.
func (p *Provider) Login(ctx context.Context, email, password string) (gateway.LoginResult, error) {
	if email == "" || password == "" {
		return gateway.LoginResult{Success: false, Message: "Please fill in all fields"}, nil
	}

	result, err := p.auth.Login(ctx, email, password)
	if err != nil {
		return gateway.LoginResult{}, err
	}
	if !result.Success || result.Identity == nil {
		return result, nil
	}

	p.mu.Lock()
	p.identity = result.Identity
	p.loading = false
	runCtx := p.runCtx
	p.mu.Unlock()

	slog.Info("Login succeeded", "user_id", result.Identity.ID)
	// The session outlives the login request, so it is keyed to the
	// provider's lifetime context rather than the request context.
	p.sessions.Initialize(runCtx, result.Identity.ID)
	return result, nil
}

// Logout clears the identity and tears down the session. The upstream call
// is best-effort: local state clears even when it fails.
func (p *Provider) Logout(ctx context.Context) {
	if err := p.auth.Logout(ctx); err != nil {
		slog.Warn("Upstream logout failed — clearing local identity anyway", "error", err)
	}

	p.mu.Lock()
	p.identity = nil
	p.mu.Unlock()

	p.sessions.Teardown()
	slog.Info("Logged out")
}

// Register creates a new account. Never auto-authenticates.
func (p *Provider) Register(ctx context.Context, name, email, password string) (gateway.RegisterResult, error) {
	if name == "" || email == "" || password == "" {
		return gateway.RegisterResult{Success: false, Message: "Please fill in all fields"}, nil
	}
	return p.auth.Register(ctx, name, email, password)
}
