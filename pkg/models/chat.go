package models

import "time"

// Message senders. The transcript only ever contains these two.
const (
	SenderUser    = "user"
	SenderSupport = "support"
)

// Attachment is an optional media reference carried by a chat message.
type Attachment struct {
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
}

// ChatMessage is one finalized entry in a chat transcript. Immutable once
// appended. Ordering is strictly append-order; Timestamp is informational,
// not a sort key.
type ChatMessage struct {
	ID         string      `json:"id"`
	Sender     string      `json:"sender"`
	Text       string      `json:"text"`
	Timestamp  time.Time   `json:"timestamp"`
	Attachment *Attachment `json:"attachment,omitempty"`
}
