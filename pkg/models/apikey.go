package models

import "time"

// API key statuses as reported by the gateway.
const (
	APIKeyStatusActive  = "active"
	APIKeyStatusRevoked = "revoked"
)

// APIKeyUsage aggregates consumption attributed to one key.
type APIKeyUsage struct {
	Requests int64   `json:"requests"`
	Tokens   int64   `json:"tokens"`
	Cost     float64 `json:"cost"`
}

// APIKey is a server-owned key record. The full secret is returned exactly
// once at creation time (CreatedAPIKey) and must never be retained beyond
// the response that carried it.
type APIKey struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	KeyPrefix string      `json:"keyPrefix"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Usage     APIKeyUsage `json:"usage"`
}

// CreatedAPIKey is the one-time creation response carrying the full secret.
type CreatedAPIKey struct {
	Name      string `json:"name"`
	KeyPrefix string `json:"keyPrefix"`
	APIKey    string `json:"apiKey"`
}
