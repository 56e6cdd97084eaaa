package transcript

import (
	"encoding/json"
	"log/slog"

	"github.com/playwithllm/console/pkg/session"
)

// EventSource is the subscription surface the assembler binds to.
// Satisfied by *session.Manager.
type EventSource interface {
	Subscribe(event string, h session.Handler) session.Token
	Unsubscribe(event string, token session.Token)
	SubscribeConnectivity(fn func(connected bool)) session.Token
	UnsubscribeConnectivity(token session.Token)
}

// Binding holds the subscriptions wiring an Assembler to an EventSource,
// so they can be released together.
type Binding struct {
	source     EventSource
	chunkTok   session.Token
	endTok     session.Token
	disableTok session.Token
	connTok    session.Token
}

// Bind subscribes the assembler to the inference reply events and to
// connectivity drops. One long-lived binding per logical chat session —
// never re-subscribe per render.
func Bind(a *Assembler, src EventSource) *Binding {
	b := &Binding{source: src}

	b.chunkTok = src.Subscribe(session.EventInferenceResponseChunk, func(raw json.RawMessage) {
		var p session.ChunkPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			slog.Warn("Malformed inference chunk payload", "error", err)
			return
		}
		a.HandleChunk(p.Result.Content)
	})
	b.endTok = src.Subscribe(session.EventInferenceResponseEnd, func(json.RawMessage) {
		a.HandleEnd()
	})
	b.disableTok = src.Subscribe(session.EventDisableChat, func(raw json.RawMessage) {
		var p session.DisablePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			slog.Warn("Malformed disable payload", "error", err)
		}
		a.HandleDisable(p.Message)
	})
	b.connTok = src.SubscribeConnectivity(func(connected bool) {
		if !connected {
			a.HandleDisconnect()
		}
	})

	return b
}

// Release removes all subscriptions created by Bind.
func (b *Binding) Release() {
	b.source.Unsubscribe(session.EventInferenceResponseChunk, b.chunkTok)
	b.source.Unsubscribe(session.EventInferenceResponseEnd, b.endTok)
	b.source.Unsubscribe(session.EventDisableChat, b.disableTok)
	b.source.UnsubscribeConnectivity(b.connTok)
}
