package mediacms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmcdole/reel/internal/domain"
)

// Login exchanges credentials for a bearer token. The request is sent without
// an Authorization header regardless of the client's token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	anon := &Client{baseURL: c.baseURL, httpClient: c.httpClient, logger: c.logger}

	body, err := anon.doRequest(ctx, http.MethodPost, "/login", nil, LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse login response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response did not include a token")
	}
	return resp.Token, nil
}

// Authenticator performs the two-step login (credential exchange, then whoami)
// against arbitrary base URLs. It satisfies session.Authenticator.
type Authenticator struct {
	logger *slog.Logger
	opts   []Option
}

// NewAuthenticator creates an Authenticator whose clients share opts
func NewAuthenticator(logger *slog.Logger, opts ...Option) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{logger: logger, opts: opts}
}

// Login returns a bearer token for username on the server at baseURL
func (a *Authenticator) Login(ctx context.Context, baseURL, username, password string) (string, error) {
	return NewClient(baseURL, "", a.logger, a.opts...).Login(ctx, username, password)
}

// WhoAmI returns the user behind token on the server at baseURL
func (a *Authenticator) WhoAmI(ctx context.Context, baseURL, token string) (*domain.User, error) {
	return NewClient(baseURL, token, a.logger, a.opts...).GetCurrentUser(ctx)
}
