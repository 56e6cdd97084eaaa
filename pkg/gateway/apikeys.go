package gateway

import (
	"context"

	"github.com/playwithllm/console/pkg/models"
)

// SearchAPIKeys lists the account's API keys with their usage aggregates.
func (c *Client) SearchAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := c.getJSON(ctx, "/api/v1/api-keys/search", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateAPIKey creates a named key. The returned secret is shown exactly
// once — callers must pass it through to the current view and drop it.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (*models.CreatedAPIKey, error) {
	body := map[string]string{"name": name}
	var created models.CreatedAPIKey
	if err := c.postJSON(ctx, "/api/v1/api-keys/create", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// RevokeAPIKey revokes the key with the given id.
func (c *Client) RevokeAPIKey(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/api/v1/api-keys/revoke/"+id, struct{}{}, nil)
}
