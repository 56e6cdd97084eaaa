package transcript

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playwithllm/console/pkg/models"
)

// mockEmitter records emitted events for assertions.
type mockEmitter struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (m *mockEmitter) Emit(event string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockEmitter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func newTestAssembler(t *testing.T, opts ...AssemblerOption) (*Assembler, *mockEmitter) {
	t.Helper()
	em := &mockEmitter{}
	return NewAssembler(em, "inferenceRequest", opts...), em
}

func TestSubmit(t *testing.T) {
	t.Run("appends user message and emits request", func(t *testing.T) {
		a, em := newTestAssembler(t)

		require.NoError(t, a.Submit("Hello there", ""))

		snap := a.Snapshot()
		require.Len(t, snap.Messages, 1)
		assert.Equal(t, models.SenderUser, snap.Messages[0].Sender)
		assert.Equal(t, "Hello there", snap.Messages[0].Text)
		assert.NotEmpty(t, snap.Messages[0].ID)
		assert.True(t, snap.Awaiting)
		assert.Empty(t, snap.Draft)
		assert.Equal(t, 1, em.count())
	})

	t.Run("attaches image when provided", func(t *testing.T) {
		a, _ := newTestAssembler(t)

		require.NoError(t, a.Submit("look at this", "aGVsbG8="))

		snap := a.Snapshot()
		require.Len(t, snap.Messages, 1)
		require.NotNil(t, snap.Messages[0].Attachment)
		assert.Equal(t, "data:image/*;base64,aGVsbG8=", snap.Messages[0].Attachment.URL)
		assert.Equal(t, "image", snap.Messages[0].Attachment.MediaType)
	})

	t.Run("rejects empty and whitespace-only text before emitting", func(t *testing.T) {
		a, em := newTestAssembler(t)

		assert.ErrorIs(t, a.Submit("", ""), ErrEmptyMessage)
		assert.ErrorIs(t, a.Submit("   \t\n", ""), ErrEmptyMessage)
		assert.Zero(t, em.count())
		assert.Empty(t, a.Snapshot().Messages)
	})

	t.Run("rejects while a reply is outstanding", func(t *testing.T) {
		a, em := newTestAssembler(t)

		require.NoError(t, a.Submit("first", ""))
		assert.ErrorIs(t, a.Submit("second", ""), ErrBusy)
		assert.Equal(t, 1, em.count())
		assert.Len(t, a.Snapshot().Messages, 1)
	})

	t.Run("allowed again after the reply finalizes", func(t *testing.T) {
		a, em := newTestAssembler(t)

		require.NoError(t, a.Submit("first", ""))
		a.HandleChunk("reply")
		a.HandleEnd()

		require.NoError(t, a.Submit("second", ""))
		assert.Equal(t, 2, em.count())
	})
}

func TestHandleChunk(t *testing.T) {
	t.Run("accumulates fragments in arrival order", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))

		a.HandleChunk("Hel")
		a.HandleChunk("lo ")
		a.HandleChunk("world")

		snap := a.Snapshot()
		assert.Equal(t, "Hello world", snap.Draft)
		assert.True(t, snap.Awaiting)
		assert.Len(t, snap.Messages, 1)
	})

	t.Run("absorbs an exact repeat of the buffer tail", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))

		a.HandleChunk("Hello")
		a.HandleChunk("Hello")
		assert.Equal(t, "Hello", a.Snapshot().Draft)

		a.HandleChunk(" world")
		a.HandleChunk(" world")
		assert.Equal(t, "Hello world", a.Snapshot().Draft)
	})

	t.Run("appends a non-tail repeat", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))

		a.HandleChunk("ha")
		a.HandleChunk("-ho")
		a.HandleChunk("ha")
		assert.Equal(t, "ha-hoha", a.Snapshot().Draft)
	})

	t.Run("ignores empty fragments", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))

		a.HandleChunk("")
		assert.Empty(t, a.Snapshot().Draft)
	})

	t.Run("accumulates even without a prior submission", func(t *testing.T) {
		// A reconnect can replay a stream for a request submitted on a
		// previous connection; the fragments must not be dropped.
		a, _ := newTestAssembler(t)

		a.HandleChunk("late ")
		a.HandleChunk("reply")
		a.HandleEnd()

		snap := a.Snapshot()
		require.Len(t, snap.Messages, 1)
		assert.Equal(t, models.SenderSupport, snap.Messages[0].Sender)
		assert.Equal(t, "late reply", snap.Messages[0].Text)
	})
}

func TestHandleEnd(t *testing.T) {
	t.Run("finalizes the draft as an immutable support message", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))
		a.HandleChunk("All done.")

		a.HandleEnd()

		snap := a.Snapshot()
		require.Len(t, snap.Messages, 2)
		assert.Equal(t, models.SenderUser, snap.Messages[0].Sender)
		assert.Equal(t, models.SenderSupport, snap.Messages[1].Sender)
		assert.Equal(t, "All done.", snap.Messages[1].Text)
		assert.Empty(t, snap.Draft)
		assert.False(t, snap.Awaiting)
	})

	t.Run("empty draft produces no transcript entry", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))

		a.HandleEnd()

		snap := a.Snapshot()
		assert.Len(t, snap.Messages, 1)
		assert.False(t, snap.Awaiting)
	})

	t.Run("fragments after end start a fresh draft", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))
		a.HandleChunk("first reply")
		a.HandleEnd()

		a.HandleChunk("second")

		snap := a.Snapshot()
		assert.Equal(t, "second", snap.Draft)
		assert.Equal(t, "first reply", snap.Messages[1].Text)
	})
}

func TestHandleDisable(t *testing.T) {
	t.Run("discards the draft and blocks submission with the reason", func(t *testing.T) {
		a, em := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))
		a.HandleChunk("partial re")

		a.HandleDisable("Support is offline")

		snap := a.Snapshot()
		assert.True(t, snap.Disabled)
		assert.Equal(t, "Support is offline", snap.DisabledReason)
		assert.Empty(t, snap.Draft)
		assert.False(t, snap.Awaiting)

		err := a.Submit("another", "")
		require.ErrorIs(t, err, ErrDisabled)
		assert.Contains(t, err.Error(), "Support is offline")
		assert.Equal(t, 1, em.count())
	})

	t.Run("is terminal — later chunk and end events are ignored", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		a.HandleDisable("maintenance")

		a.HandleChunk("should be dropped")
		a.HandleEnd()

		snap := a.Snapshot()
		assert.True(t, snap.Disabled)
		assert.Empty(t, snap.Draft)
		assert.Empty(t, snap.Messages)
	})
}

func TestIdleWatchdog(t *testing.T) {
	waitForMessages := func(t *testing.T, a *Assembler, n int) Snapshot {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if snap := a.Snapshot(); len(snap.Messages) >= n {
				return snap
			}
			time.Sleep(5 * time.Millisecond)
		}
		snap := a.Snapshot()
		require.GreaterOrEqual(t, len(snap.Messages), n, "timed out waiting for %d messages", n)
		return snap
	}

	t.Run("aborts a stalled reply and re-enables input", func(t *testing.T) {
		a, _ := newTestAssembler(t, WithIdleTimeout(30*time.Millisecond))
		require.NoError(t, a.Submit("hi", ""))
		a.HandleChunk("stalls here")

		snap := waitForMessages(t, a, 2)
		assert.Equal(t, models.SenderSupport, snap.Messages[1].Sender)
		assert.Equal(t, idleExpiredText, snap.Messages[1].Text)
		assert.Empty(t, snap.Draft)
		assert.False(t, snap.Awaiting)

		require.NoError(t, a.Submit("retry", ""))
	})

	t.Run("fragments keep the watchdog from firing", func(t *testing.T) {
		a, _ := newTestAssembler(t, WithIdleTimeout(60*time.Millisecond))
		require.NoError(t, a.Submit("hi", ""))

		for i := 0; i < 5; i++ {
			time.Sleep(20 * time.Millisecond)
			a.HandleChunk("x")
		}
		a.HandleEnd()

		snap := a.Snapshot()
		require.Len(t, snap.Messages, 2)
		assert.NotEqual(t, idleExpiredText, snap.Messages[1].Text)
	})

	t.Run("stale timer does not fire after the reply completed", func(t *testing.T) {
		a, _ := newTestAssembler(t, WithIdleTimeout(30*time.Millisecond))
		require.NoError(t, a.Submit("hi", ""))
		a.HandleChunk("done")
		a.HandleEnd()

		time.Sleep(80 * time.Millisecond)

		snap := a.Snapshot()
		require.Len(t, snap.Messages, 2)
		assert.Equal(t, "done", snap.Messages[1].Text)
	})
}

func TestHandleDisconnect(t *testing.T) {
	t.Run("aborts an outstanding reply immediately", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))
		a.HandleChunk("partial")

		a.HandleDisconnect()

		snap := a.Snapshot()
		require.Len(t, snap.Messages, 2)
		assert.Equal(t, idleExpiredText, snap.Messages[1].Text)
		assert.Empty(t, snap.Draft)
		assert.False(t, snap.Awaiting)
	})

	t.Run("no-op when nothing is outstanding", func(t *testing.T) {
		a, _ := newTestAssembler(t)
		require.NoError(t, a.Submit("hi", ""))
		a.HandleChunk("full reply")
		a.HandleEnd()

		a.HandleDisconnect()

		assert.Len(t, a.Snapshot().Messages, 2)
	})
}

func TestOnChange(t *testing.T) {
	var mu sync.Mutex
	var snaps []Snapshot
	em := &mockEmitter{}
	a := NewAssembler(em, "inferenceRequest", WithOnChange(func(s Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	}))

	require.NoError(t, a.Submit("hi", ""))
	a.HandleChunk("re")
	a.HandleChunk("ply")
	a.HandleEnd()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, snaps, 4)
	assert.True(t, snaps[0].Awaiting)
	assert.Equal(t, "re", snaps[1].Draft)
	assert.Equal(t, "reply", snaps[2].Draft)
	assert.False(t, snaps[3].Awaiting)
	require.Len(t, snaps[3].Messages, 2)
	assert.Equal(t, "reply", snaps[3].Messages[1].Text)
}

func TestSnapshotIsolation(t *testing.T) {
	a, _ := newTestAssembler(t)
	require.NoError(t, a.Submit("hi", ""))

	snap := a.Snapshot()
	snap.Messages[0].Text = "mutated"

	assert.Equal(t, "hi", a.Snapshot().Messages[0].Text)
}
