package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playwithllm/console/pkg/gateway"
	"github.com/playwithllm/console/pkg/models"
)

// fakeAuth is a scripted Authenticator.
type fakeAuth struct {
	identity    *models.Identity
	fetchErr    error
	loginResult gateway.LoginResult
	loginErr    error
	logoutErr   error
	registerRes gateway.RegisterResult

	mu          sync.Mutex
	loginCalls  int
	logoutCalls int
}

func (f *fakeAuth) FetchCurrentIdentity(context.Context) (*models.Identity, error) {
	return f.identity, f.fetchErr
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (gateway.LoginResult, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeAuth) Register(_ context.Context, name, email, password string) (gateway.RegisterResult, error) {
	return f.registerRes, nil
}

// fakeLifecycle records session lifecycle transitions.
type fakeLifecycle struct {
	mu          sync.Mutex
	initialized []string
	teardowns   int
}

func (f *fakeLifecycle) Initialize(_ context.Context, identityID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = append(f.initialized, identityID)
}

func (f *fakeLifecycle) Teardown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teardowns++
}

func TestStart(t *testing.T) {
	t.Run("bootstraps the stored identity and starts the session", func(t *testing.T) {
		auth := &fakeAuth{identity: &models.Identity{ID: "u1", DisplayName: "Pat"}}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)

		require.True(t, p.IsLoading())
		p.Start(context.Background())

		assert.False(t, p.IsLoading())
		assert.True(t, p.IsAuthenticated())
		require.NotNil(t, p.Current())
		assert.Equal(t, "u1", p.Current().ID)
		assert.Equal(t, []string{"u1"}, sessions.initialized)
	})

	t.Run("signed out resolves without a session", func(t *testing.T) {
		auth := &fakeAuth{} // FetchCurrentIdentity returns (nil, nil)
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)

		p.Start(context.Background())

		assert.False(t, p.IsLoading())
		assert.False(t, p.IsAuthenticated())
		assert.Nil(t, p.Current())
		assert.Empty(t, sessions.initialized)
	})

	t.Run("fetch failure starts signed out, not fatal", func(t *testing.T) {
		auth := &fakeAuth{fetchErr: errors.New("gateway down")}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)

		p.Start(context.Background())

		assert.False(t, p.IsLoading())
		assert.False(t, p.IsAuthenticated())
	})

	t.Run("runs the bootstrap fetch exactly once", func(t *testing.T) {
		auth := &fakeAuth{identity: &models.Identity{ID: "u1"}}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)

		p.Start(context.Background())
		p.Start(context.Background())

		assert.Equal(t, []string{"u1"}, sessions.initialized)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success stores the identity and starts the session", func(t *testing.T) {
		auth := &fakeAuth{loginResult: gateway.LoginResult{
			Success:  true,
			Identity: &models.Identity{ID: "u2", Email: "pat@example.com"},
		}}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)
		p.Start(context.Background())

		result, err := p.Login(context.Background(), "pat@example.com", "secret")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, p.IsAuthenticated())
		assert.Equal(t, []string{"u2"}, sessions.initialized)
	})

	t.Run("failure leaves identity and session untouched", func(t *testing.T) {
		auth := &fakeAuth{loginResult: gateway.LoginResult{
			Success: false,
			Message: "Invalid email or password",
		}}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)
		p.Start(context.Background())

		result, err := p.Login(context.Background(), "pat@example.com", "wrong")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.False(t, p.IsAuthenticated())
		assert.Empty(t, sessions.initialized)
	})

	t.Run("unverified email reason passes through", func(t *testing.T) {
		auth := &fakeAuth{loginResult: gateway.LoginResult{
			Success: false,
			Message: "Please verify your email",
			Reason:  gateway.ReasonEmailNotVerified,
		}}
		p := NewProvider(auth, &fakeLifecycle{}, time.Second)
		p.Start(context.Background())

		result, err := p.Login(context.Background(), "pat@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, gateway.ReasonEmailNotVerified, result.Reason)
	})

	t.Run("empty fields are rejected locally", func(t *testing.T) {
		auth := &fakeAuth{}
		p := NewProvider(auth, &fakeLifecycle{}, time.Second)

		result, err := p.Login(context.Background(), "", "secret")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Please fill in all fields", result.Message)

		result, err = p.Login(context.Background(), "pat@example.com", "")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Zero(t, auth.loginCalls)
	})

	t.Run("transport failure returns the error", func(t *testing.T) {
		auth := &fakeAuth{loginErr: errors.New("connection refused")}
		p := NewProvider(auth, &fakeLifecycle{}, time.Second)

		_, err := p.Login(context.Background(), "pat@example.com", "secret")
		require.Error(t, err)
		assert.False(t, p.IsAuthenticated())
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears identity and tears down the session", func(t *testing.T) {
		auth := &fakeAuth{identity: &models.Identity{ID: "u1"}}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)
		p.Start(context.Background())
		require.True(t, p.IsAuthenticated())

		p.Logout(context.Background())

		assert.False(t, p.IsAuthenticated())
		assert.Nil(t, p.Current())
		assert.Equal(t, 1, sessions.teardowns)
	})

	t.Run("upstream failure still clears local state", func(t *testing.T) {
		auth := &fakeAuth{identity: &models.Identity{ID: "u1"}, logoutErr: errors.New("boom")}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)
		p.Start(context.Background())

		p.Logout(context.Background())

		assert.False(t, p.IsAuthenticated())
		assert.Equal(t, 1, sessions.teardowns)
	})
}

func TestRegister(t *testing.T) {
	t.Run("never auto-authenticates", func(t *testing.T) {
		auth := &fakeAuth{registerRes: gateway.RegisterResult{Success: true, Message: "check your inbox"}}
		sessions := &fakeLifecycle{}
		p := NewProvider(auth, sessions, time.Second)
		p.Start(context.Background())

		result, err := p.Register(context.Background(), "Pat", "pat@example.com", "secret")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, p.IsAuthenticated())
		assert.Empty(t, sessions.initialized)
	})

	t.Run("empty fields are rejected locally", func(t *testing.T) {
		p := NewProvider(&fakeAuth{}, &fakeLifecycle{}, time.Second)

		result, err := p.Register(context.Background(), "", "pat@example.com", "secret")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Please fill in all fields", result.Message)
	})
}

func TestCurrentReturnsACopy(t *testing.T) {
	auth := &fakeAuth{identity: &models.Identity{ID: "u1", DisplayName: "Pat"}}
	p := NewProvider(auth, &fakeLifecycle{}, time.Second)
	p.Start(context.Background())

	ident := p.Current()
	ident.DisplayName = "mutated"

	assert.Equal(t, "Pat", p.Current().DisplayName)
}
