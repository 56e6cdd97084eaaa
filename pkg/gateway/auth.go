package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/playwithllm/console/pkg/models"
)

// ReasonEmailNotVerified is the distinguished login failure reason the view
// layer branches on to offer a resend-verification path.
const ReasonEmailNotVerified = "email-not-verified"

// LoginResult is the discriminated outcome of a login attempt.
type LoginResult struct {
	Success  bool
	Message  string
	Reason   string
	Identity *models.Identity
}

// RegisterResult is the outcome of a registration attempt. Registration
// never auto-authenticates.
type RegisterResult struct {
	Success bool
	Message string
}

// FetchCurrentIdentity performs the bootstrap identity lookup.
// Returns (nil, nil) on 401 — signed out is not an error condition.
func (c *Client) FetchCurrentIdentity(ctx context.Context) (*models.Identity, error) {
	var ident models.Identity
	err := c.getJSON(ctx, "/api/auth/me", &ident)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return &ident, nil
}

// Login authenticates with email/password. Authentication failures are
// folded into the result; only transport-level problems return an error.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		User    *models.Identity `json:"user"`
		Message string           `json:"message"`
		Reason  string           `json:"reason"`
	}
	err := c.postJSON(ctx, "/api/auth/login", body, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return LoginResult{Success: false, Message: apiErr.Message, Reason: apiErr.Reason}, nil
		}
		return LoginResult{}, err
	}
	if resp.User == nil {
		return LoginResult{Success: false, Message: resp.Message, Reason: resp.Reason}, nil
	}
	return LoginResult{Success: true, Message: resp.Message, Identity: resp.User}, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/auth/logout", struct{}{}, nil)
}

// Register creates a new account. The server responds 201 on success;
// validation failures are folded into the result.
func (c *Client) Register(ctx context.Context, name, email, password string) (RegisterResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var resp struct {
		Message string `json:"message"`
	}
	err := c.postJSON(ctx, "/api/auth/register", body, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return RegisterResult{Success: false, Message: apiErr.Message}, nil
		}
		return RegisterResult{}, err
	}
	return RegisterResult{Success: true, Message: resp.Message}, nil
}

// ResendVerification asks the server to re-send the verification email for
// the current (unverified) account.
func (c *Client) ResendVerification(ctx context.Context) error {
	return c.getJSON(ctx, "/api/auth/resend-verification", nil)
}

// VerifyEmail redeems an email verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.getJSON(ctx, "/api/auth/verify-email?token="+url.QueryEscape(token), nil)
}
