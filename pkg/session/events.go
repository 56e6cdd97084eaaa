// Package session owns the single persistent realtime connection to the
// gateway and the typed event-subscription surface over it.
//
// At most one live connection exists per Manager: initializing for a new
// identity closes the previous connection first, so an event is never
// delivered twice through overlapping connections.
package session

import "encoding/json"

// Outbound event names.
const (
	// EventInferenceRequest submits a chat prompt for streamed inference.
	EventInferenceRequest = "inferenceRequest"
)

// Inbound event names.
const (
	// EventInferenceResponseChunk carries one partial reply fragment.
	EventInferenceResponseChunk = "inferenceResponseChunk"
	// EventInferenceResponseEnd marks the end of the streamed reply.
	EventInferenceResponseEnd = "inferenceResponseEnd"
	// EventDisableChat is a server-initiated terminal disable of the chat
	// surface, carrying a user-visible reason.
	EventDisableChat = "disableChat"
)

// Envelope is the JSON frame exchanged over the realtime channel.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InferenceRequestPayload is the outbound payload for EventInferenceRequest.
type InferenceRequestPayload struct {
	Message     string `json:"message"`
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// ChunkPayload is the inbound payload for EventInferenceResponseChunk.
type ChunkPayload struct {
	Result struct {
		Content string `json:"content"`
	} `json:"result"`
}

// DisablePayload is the inbound payload for EventDisableChat.
type DisablePayload struct {
	Message string `json:"message"`
}
