package spapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the production service. Endpoints live under /api/.
	DefaultBaseURL = "https://app.smartprospective.com"

	defaultTimeout       = 30 * time.Second
	defaultRetryInterval = 500 * time.Millisecond
	defaultUserAgent     = "spapi-go/1.0"
)

// Client represents a Smart Prospective API client
type Client struct {
	baseURL       string
	publicKey     string
	secretKey     string
	httpClient    *http.Client
	userAgent     string
	maxRetries    int
	retryInterval time.Duration
	downloadDir   string
	logger        zerolog.Logger

	// loginMu serializes logins so concurrent callers share one token
	loginMu sync.Mutex
	mu      sync.RWMutex
	token   string
}

// NewClient creates a new client. No request is sent until the first call.
func NewClient(publicKey, secretKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	publicKey = strings.TrimSpace(publicKey)
	secretKey = strings.TrimSpace(secretKey)
	if publicKey == "" || secretKey == "" {
		return nil, newError("new_client", ErrMissingCredentials, "public and secret API keys are required")
	}

	client := &Client{
		baseURL:       DefaultBaseURL,
		publicKey:     publicKey,
		secretKey:     secretKey,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		userAgent:     defaultUserAgent,
		retryInterval: defaultRetryInterval,
		logger:        logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	baseURL, err := sanitizeBaseURL(client.baseURL)
	if err != nil {
		return nil, newError("new_client", err, "invalid base URL %q", client.baseURL)
	}
	client.baseURL = baseURL

	return client, nil
}

func sanitizeBaseURL(baseURL string) (string, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return DefaultBaseURL, nil
	}
	// Accept URLs configured with the /api suffix already
	baseURL = strings.TrimSuffix(baseURL, "/api")
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return baseURL, nil
}

// BaseURL returns the service URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the current API token, empty when logged out
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoggedIn reports whether the client holds a token
func (c *Client) LoggedIn() bool {
	return c.Token() != ""
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges the API keys for a token. When a token is already held it
// is returned without contacting the service.
func (c *Client) Login(ctx context.Context) (string, error) {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	if token := c.Token(); token != "" {
		c.logger.Debug().Msg("Already connected")
		return token, nil
	}

	resp, err := c.post(ctx, "login", "login", url.Values{
		"api_public_key": {c.publicKey},
		"api_secret_key": {c.secretKey},
	})
	if err != nil {
		return "", err
	}

	token := resp.String("token")
	if token == "" {
		return "", newError("login", ErrInvalidResponse, "no token in login response")
	}
	c.setToken(token)

	c.logger.Debug().Str("base_url", c.baseURL).Msg("Logged in to Smart Prospective")
	return token, nil
}

// Logout releases the token. Like every authenticated call it logs in first
// when no token is held.
func (c *Client) Logout(ctx context.Context) error {
	token, err := c.authorize(ctx, "logout")
	if err != nil {
		return err
	}

	if _, err := c.post(ctx, "logout", "logout", url.Values{"token": {token}}); err != nil {
		return err
	}
	c.setToken("")

	c.logger.Debug().Msg("Logged out from Smart Prospective")
	return nil
}

// authorize returns the held token, logging in first when there is none
func (c *Client) authorize(ctx context.Context, op string) (string, error) {
	if token := c.Token(); token != "" {
		return token, nil
	}

	token, err := c.Login(ctx)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("Failure to login the user")
		return "", newError(op, fmt.Errorf("%w: %w", ErrNotLoggedIn, err), "the user must be logged")
	}
	return token, nil
}

// tokenForm starts a form body carrying the token
func tokenForm(token string, fields ...string) url.Values {
	form := url.Values{"token": {token}}
	for i := 0; i+1 < len(fields); i += 2 {
		form.Set(fields[i], fields[i+1])
	}
	return form
}
