package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Manager owns the single realtime connection for the current identity.
//
// Lifecycle: Initialize dials a connection keyed by the identity id,
// closing any previous one first. The connection is redialed with bounded
// exponential backoff until Teardown. Consumers observe only Connected()
// and the connectivity callbacks; emits while disconnected are logged
// no-ops rather than errors.
type Manager struct {
	realtimeURL  string
	writeTimeout time.Duration
	minBackoff   time.Duration
	maxBackoff   time.Duration

	registry *registry

	mu         sync.Mutex
	conn       *websocket.Conn
	connID     string
	identityID string
	state      State
	cancelLoop context.CancelFunc
	loopDone   chan struct{}

	nextConnToken Token
	connSubs      map[Token]func(connected bool)
}

// Option configures a Manager.
type Option func(*Manager)

// WithWriteTimeout bounds each outbound write. Default 10s.
func WithWriteTimeout(d time.Duration) Option {
	return func(m *Manager) { m.writeTimeout = d }
}

// WithBackoff bounds the redial delay after a dropped connection.
// Default 1s to 30s.
func WithBackoff(min, max time.Duration) Option {
	return func(m *Manager) { m.minBackoff, m.maxBackoff = min, max }
}

// NewManager creates a Manager for the given realtime endpoint.
func NewManager(realtimeURL string, opts ...Option) *Manager {
	m := &Manager{
		realtimeURL:  realtimeURL,
		writeTimeout: 10 * time.Second,
		minBackoff:   time.Second,
		maxBackoff:   30 * time.Second,
		registry:     newRegistry(),
		connSubs:     make(map[Token]func(bool)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize opens the realtime connection for the given identity. If a
// connection already exists it is closed first — at most one live
// connection exists at a time, so events are never delivered twice.
func (m *Manager) Initialize(ctx context.Context, identityID string) {
	m.stopLoop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.identityID = identityID
	m.cancelLoop = cancel
	m.loopDone = done
	m.mu.Unlock()
	m.setState(StateConnecting)

	slog.Info("Initializing realtime session", "user_id", identityID)
	go m.run(loopCtx, identityID, done)
}

// Subscribe registers a handler for an inbound event. Multiple handlers per
// event are supported; the returned token removes only this registration.
func (m *Manager) Subscribe(event string, h Handler) Token {
	return m.registry.add(event, h)
}

// Unsubscribe removes the handler registered under token for event.
func (m *Manager) Unsubscribe(event string, token Token) {
	m.registry.remove(event, token)
}

// SubscribeConnectivity registers a callback invoked whenever boolean
// connectivity changes. Callbacks run on the connection goroutine.
func (m *Manager) SubscribeConnectivity(fn func(connected bool)) Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextConnToken++
	m.connSubs[m.nextConnToken] = fn
	return m.nextConnToken
}

// UnsubscribeConnectivity removes a connectivity callback.
func (m *Manager) UnsubscribeConnectivity(token Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connSubs, token)
}

// Connected reports whether the connection is live and ready to emit.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ConnectionID returns the id of the live connection, or "" when down.
func (m *Manager) ConnectionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected {
		return ""
	}
	return m.connID
}

// Emit sends an outbound event. When no connection is live or the
// connection is not ready, the event is dropped with a logged warning —
// not an error — per the session contract.
func (m *Manager) Emit(event string, payload any) error {
	m.mu.Lock()
	conn := m.conn
	state := m.state
	m.mu.Unlock()

	if conn == nil || state != StateConnected {
		slog.Warn("Dropping emit while not connected", "event", event, "state", state.String())
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", event, err)
	}
	data, err := json.Marshal(Envelope{Event: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal envelope for %s: %w", event, err)
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), m.writeTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write %s: %w", event, err)
	}
	return nil
}

// Teardown closes the connection and releases all subscriptions. Runs on
// identity logout and on process shutdown. Safe to call repeatedly.
func (m *Manager) Teardown() {
	m.stopLoop()
	m.registry.clear()

	m.mu.Lock()
	m.connSubs = make(map[Token]func(bool))
	m.identityID = ""
	m.mu.Unlock()

	slog.Info("Realtime session torn down")
}

// stopLoop cancels the running connection loop, closes the live connection
// and waits for the loop goroutine to exit.
func (m *Manager) stopLoop() {
	m.mu.Lock()
	cancel := m.cancelLoop
	done := m.loopDone
	conn := m.conn
	m.cancelLoop = nil
	m.loopDone = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
	if done != nil {
		<-done
	}
}

// run dials, reads and redials until ctx is cancelled.
func (m *Manager) run(ctx context.Context, identityID string, done chan struct{}) {
	defer close(done)

	backoff := m.minBackoff
	for {
		if ctx.Err() != nil {
			m.setState(StateDisconnected)
			return
		}

		conn, connID, err := m.dial(ctx, identityID)
		if err != nil {
			if ctx.Err() != nil {
				m.setState(StateDisconnected)
				return
			}
			slog.Warn("Realtime dial failed", "user_id", identityID, "error", err, "retry_in", backoff)
			m.setState(StateDisconnected)
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, m.maxBackoff)
			m.setState(StateConnecting)
			continue
		}

		backoff = m.minBackoff
		m.mu.Lock()
		m.conn = conn
		m.connID = connID
		m.mu.Unlock()
		m.setState(StateConnected)
		slog.Info("Realtime connected", "connection_id", connID, "user_id", identityID)

		m.readLoop(ctx, conn)

		m.mu.Lock()
		m.conn = nil
		m.connID = ""
		m.mu.Unlock()
		m.setState(StateDisconnected)
		slog.Info("Realtime disconnected", "connection_id", connID)

		if ctx.Err() != nil {
			return
		}
		if !sleepCtx(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, m.maxBackoff)
		m.setState(StateConnecting)
	}
}

// dial opens one WebSocket connection parameterized by the identity id.
func (m *Manager) dial(ctx context.Context, identityID string) (*websocket.Conn, string, error) {
	u := m.realtimeURL + "?userId=" + url.QueryEscape(identityID)
	conn, _, err := websocket.Dial(ctx, u, &websocket.DialOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("websocket dial: %w", err)
	}
	return conn, uuid.New().String(), nil
}

// readLoop decodes inbound envelopes and dispatches them until the
// connection closes or ctx is cancelled.
func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			slog.Warn("Invalid realtime frame", "error", err)
			continue
		}

		if n := m.registry.dispatch(env.Event, env.Payload); n == 0 {
			slog.Debug("Unhandled realtime event", "event", env.Event)
		}
	}
}

// setState updates the state and notifies connectivity subscribers when the
// boolean connected/not-connected view changes.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	prev := m.state
	m.state = s
	var subs []func(bool)
	if (prev == StateConnected) != (s == StateConnected) {
		subs = make([]func(bool), 0, len(m.connSubs))
		for _, fn := range m.connSubs {
			subs = append(subs, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s == StateConnected)
	}
}

// sleepCtx waits d or until ctx is cancelled. Returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
