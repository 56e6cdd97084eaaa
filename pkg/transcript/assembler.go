// Package transcript turns the raw inference event stream into a clean,
// append-only chat history plus a live preview of the in-progress reply.
//
// Invariants:
//   - the transcript grows monotonically and entries are never mutated;
//   - at most one draft is live at any time;
//   - an exact repeat of the buffer's current tail is absorbed, not
//     appended (the transport may redeliver overlapping fragments);
//   - a server disable signal is terminal — no later chunk or end event
//     re-enables the surface.
package transcript

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playwithllm/console/pkg/models"
)

// Sentinel errors a caller can branch on for inline display.
var (
	// ErrEmptyMessage rejects a submission before any network round-trip.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrBusy rejects a submission while a reply is outstanding.
	ErrBusy = errors.New("a reply is still in progress")
	// ErrDisabled rejects a submission after a server disable signal.
	ErrDisabled = errors.New("chat is disabled")
)

// idleExpiredText is appended to the transcript when a streamed reply stalls
// past the idle timeout and its draft is discarded.
const idleExpiredText = "No response received. The connection may have dropped — please try again."

// Emitter sends the outbound request event. Satisfied by *session.Manager.
type Emitter interface {
	Emit(event string, payload any) error
}

// Snapshot is a point-in-time copy of the assembler state for rendering.
type Snapshot struct {
	Messages       []models.ChatMessage `json:"messages"`
	Draft          string               `json:"draft"`
	Awaiting       bool                 `json:"awaiting"`
	Disabled       bool                 `json:"disabled"`
	DisabledReason string               `json:"disabledReason,omitempty"`
}

// Assembler accumulates partial reply fragments into an ordered, immutable
// message list plus one in-flight draft. Safe for concurrent use: event
// handlers run on the connection's read goroutine while submissions arrive
// from request handlers.
type Assembler struct {
	emitter      Emitter
	requestEvent string
	idleTimeout  time.Duration
	onChange     func(Snapshot)

	mu             sync.Mutex
	messages       []models.ChatMessage
	draft          string
	awaiting       bool
	disabled       bool
	disabledReason string

	// watchdog discards a dangling draft when no end event ever arrives.
	// gen invalidates a stale timer that fires after the exchange moved on.
	watchdog *time.Timer
	gen      uint64
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithIdleTimeout bounds the gap between streamed fragments before an
// outstanding draft is discarded as failed. Default 30s.
func WithIdleTimeout(d time.Duration) AssemblerOption {
	return func(a *Assembler) { a.idleTimeout = d }
}

// WithOnChange registers a callback invoked with a fresh Snapshot after
// every state change, for view re-rendering. Runs outside the lock.
func WithOnChange(fn func(Snapshot)) AssemblerOption {
	return func(a *Assembler) { a.onChange = fn }
}

// NewAssembler creates an assembler that emits outbound requests through
// emitter under the given event name.
func NewAssembler(emitter Emitter, requestEvent string, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		emitter:      emitter,
		requestEvent: requestEvent,
		idleTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Submit appends the user's message to the transcript and emits the
// outbound request. Validation failures return before any network activity:
// empty text, a reply already outstanding, or a disabled surface.
func (a *Assembler) Submit(text, imageBase64 string) error {
	text = strings.TrimSpace(text)

	a.mu.Lock()
	if a.disabled {
		reason := a.disabledReason
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDisabled, reason)
	}
	if a.awaiting {
		a.mu.Unlock()
		return ErrBusy
	}
	if text == "" {
		a.mu.Unlock()
		return ErrEmptyMessage
	}

	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		Sender:    models.SenderUser,
		Text:      text,
		Timestamp: time.Now(),
	}
	if imageBase64 != "" {
		msg.Attachment = &models.Attachment{
			URL:       "data:image/*;base64," + imageBase64,
			MediaType: "image",
		}
	}
	a.messages = append(a.messages, msg)
	a.draft = ""
	a.awaiting = true
	a.armWatchdogLocked()
	a.mu.Unlock()
	a.notify()

	payload := struct {
		Message     string `json:"message"`
		ImageBase64 string `json:"imageBase64,omitempty"`
	}{Message: text, ImageBase64: imageBase64}
	if err := a.emitter.Emit(a.requestEvent, payload); err != nil {
		return fmt.Errorf("emit %s: %w", a.requestEvent, err)
	}
	return nil
}

// HandleChunk appends one reply fragment to the draft. An exact repeat of
// the buffer's current tail is absorbed without growing the buffer.
func (a *Assembler) HandleChunk(fragment string) {
	if fragment == "" {
		return
	}

	a.mu.Lock()
	if a.disabled {
		a.mu.Unlock()
		return
	}
	// Tail-match duplicate suppression. This is a heuristic: the transport
	// does not guarantee non-overlapping fragment boundaries, so a
	// legitimately repeated short substring is absorbed too.
	if !strings.HasSuffix(a.draft, fragment) {
		a.draft += fragment
	}
	// Any fragment, duplicate or not, proves the stream is alive.
	a.armWatchdogLocked()
	a.mu.Unlock()
	a.notify()
}

// HandleEnd finalizes a non-empty draft into an immutable support message
// and clears the in-flight state.
func (a *Assembler) HandleEnd() {
	a.mu.Lock()
	if a.disabled {
		a.mu.Unlock()
		return
	}
	if a.draft != "" {
		a.messages = append(a.messages, models.ChatMessage{
			ID:        uuid.New().String(),
			Sender:    models.SenderSupport,
			Text:      a.draft,
			Timestamp: time.Now(),
		})
	}
	a.draft = ""
	a.awaiting = false
	a.stopWatchdogLocked()
	a.mu.Unlock()
	a.notify()
}

// HandleDisable marks the surface disabled with a user-visible reason.
// Terminal for this assembler: any outstanding draft is discarded and no
// later chunk or end event re-enables the surface.
func (a *Assembler) HandleDisable(reason string) {
	a.mu.Lock()
	a.disabled = true
	a.disabledReason = reason
	a.draft = ""
	a.awaiting = false
	a.stopWatchdogLocked()
	a.mu.Unlock()

	slog.Warn("Chat disabled by server", "reason", reason)
	a.notify()
}

// HandleDisconnect discards an outstanding draft immediately when the
// connection drops mid-stream, instead of waiting for the idle timeout.
func (a *Assembler) HandleDisconnect() {
	a.abortOutstanding("connection dropped mid-stream")
}

// Snapshot returns a copy of the current state for rendering.
func (a *Assembler) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Assembler) snapshotLocked() Snapshot {
	msgs := make([]models.ChatMessage, len(a.messages))
	copy(msgs, a.messages)
	return Snapshot{
		Messages:       msgs,
		Draft:          a.draft,
		Awaiting:       a.awaiting,
		Disabled:       a.disabled,
		DisabledReason: a.disabledReason,
	}
}

// armWatchdogLocked (re)starts the idle timer for the current exchange.
func (a *Assembler) armWatchdogLocked() {
	if a.idleTimeout <= 0 {
		return
	}
	a.stopWatchdogLocked()
	a.gen++
	gen := a.gen
	a.watchdog = time.AfterFunc(a.idleTimeout, func() {
		a.expire(gen)
	})
}

func (a *Assembler) stopWatchdogLocked() {
	if a.watchdog != nil {
		a.watchdog.Stop()
		a.watchdog = nil
	}
	a.gen++
}

// expire runs when the idle timer fires. A stale generation means the
// exchange already completed or restarted; the timer is ignored.
func (a *Assembler) expire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.awaiting {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	slog.Warn("Streamed reply idle timeout — discarding draft", "timeout", a.idleTimeout)
	a.abortOutstanding("reply timed out")
}

// abortOutstanding discards the draft of an outstanding exchange, appends
// an error message in its place and re-enables input.
func (a *Assembler) abortOutstanding(cause string) {
	a.mu.Lock()
	if !a.awaiting {
		a.mu.Unlock()
		return
	}
	a.draft = ""
	a.awaiting = false
	a.stopWatchdogLocked()
	a.messages = append(a.messages, models.ChatMessage{
		ID:        uuid.New().String(),
		Sender:    models.SenderSupport,
		Text:      idleExpiredText,
		Timestamp: time.Now(),
	})
	a.mu.Unlock()

	slog.Warn("Outstanding reply aborted", "cause", cause)
	a.notify()
}

// notify publishes a fresh snapshot to the change callback, if any.
func (a *Assembler) notify() {
	if a.onChange == nil {
		return
	}
	a.mu.Lock()
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.onChange(snap)
}
