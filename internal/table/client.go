package table

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client queries a Supabase table through its PostgREST gateway.
type Client struct {
	baseURL    string
	anonKey    string
	table      string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a table service client. baseURL is the project base URL
// (e.g. https://xyz.supabase.co) and anonKey the public API key; both are
// sent on every request.
func NewClient(baseURL, anonKey, table string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		table:   table,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// QueryError represents an error response from the PostgREST gateway.
type QueryError struct {
	StatusCode int
	Body       []byte
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("table query error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// query performs a GET against /rest/v1/{table} and unmarshals the rows.
func (c *Client) query(ctx context.Context, params url.Values, result any) error {
	fullURL := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(c.table), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &QueryError{StatusCode: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal rows: %w", err)
	}

	return nil
}
