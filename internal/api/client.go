// Package api provides the HTTP/JSON client for the bookchat backend.
package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
)

// defaultTimeout bounds a single round trip; ingestion of a large books
// folder can take minutes on the backend.
const defaultTimeout = 300 * time.Second

// Client talks to the /load, /ask and /books endpoints
type Client struct {
	httpClient tls_client.HttpClient
	baseURL    string
	timeout    time.Duration
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the backend base URL (scheme, host and optional prefix)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the per-request timeout of the default transport
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the transport (used by tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		baseURL: models.DefaultServerURL,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if client.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", client.timeout)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(timeoutSeconds(client.timeout)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// timeoutSeconds rounds d up to whole seconds so a sub-second timeout
// never turns into no timeout at all.
func timeoutSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully read backend reply
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do performs one request and reads the whole body. Transport failures are
// returned as NetworkError; HTTP status handling is left to the caller.
func (c *Client) do(ctx context.Context, method, endpoint, operation string, body io.Reader, headers map[string]string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
	}

	return response{status: resp.StatusCode, body: data}, nil
}

// statusError converts a non-2xx reply into an APIError
func statusError(resp response, endpoint, operation string) error {
	return apierrors.NewAPIErrorWithBody(resp.status, endpoint, operation+" failed", string(resp.body))
}
