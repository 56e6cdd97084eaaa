package models

import "time"

// InferenceRequest is a server-owned record of one inference exchange,
// fetched read-only for the history views.
type InferenceRequest struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Status    string    `json:"status"`
	Result    string    `json:"result"`
	Error     string    `json:"error"`
	ModelName string    `json:"modelName"`
	CreatedAt time.Time `json:"createdAt"`
	Response  string    `json:"response"`
	ImageData string    `json:"imageData,omitempty"`
}

// Model describes one model available through the gateway.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Multimodal  bool   `json:"multimodal,omitempty"`
	Description string `json:"description,omitempty"`
}
