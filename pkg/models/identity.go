// Package models contains the view-facing domain types consumed from the
// upstream gateway. All durable state is owned server-side; these types are
// read-only snapshots except where a field is documented otherwise.
package models

// Identity is the authenticated user record driving authorization of
// protected views. Created on successful bootstrap fetch or login, cleared
// on logout. Owned exclusively by the identity provider; read-only elsewhere.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}
