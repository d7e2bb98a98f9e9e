// Package llm implements the client for a local Llama server (Ollama-style
// generate API) used by the query CLI to answer questions about current
// prices.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
)

// Client talks to a local Llama server.
type Client struct {
	url        string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the given generate endpoint and model.
func NewClient(url, model string, opts ...ClientOption) *Client {
	c := &Client{
		url:   url,
		model: model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
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

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Ask sends the user's question with the price context and returns the
// model's answer.
func (c *Client) Ask(ctx context.Context, question, priceContext string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nQuestion: %s\n\nAnswer:", priceContext, question)

	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query llama server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("llama server error %d: %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if result.Response == "" {
		return "", fmt.Errorf("llama server returned no answer")
	}

	return result.Response, nil
}

// BuildContext formats price records as the context block fed to the model.
func BuildContext(records []model.PriceRecord) string {
	if len(records) == 0 {
		return "No crypto data available."
	}

	var b strings.Builder
	b.WriteString("Current crypto prices:\n\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s (%s): $%.2f, 24h change %+.2f%%, market cap $%.0f\n",
			rec.Name, rec.Symbol, rec.Price, rec.Change24h, rec.MarketCap)
	}
	return b.String()
}
