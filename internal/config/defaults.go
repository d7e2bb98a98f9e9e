package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultTable        = "crypto_prices"
	DefaultFeedBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultCurrency     = "usd"
	DefaultPageSize     = 20
	DefaultPollInterval = 30 * time.Second
	DefaultFeedTimeout  = 10 * time.Second
	DefaultServerPort   = 8080
	DefaultLLMURL       = "http://localhost:11434/api/generate"
	DefaultLLMModel     = "llama2"
)

func (c *DashboardConfig) applyDefaults() {
	// Table service defaults
	if c.Supabase.Table == "" {
		c.Supabase.Table = DefaultTable
	}

	// Feed defaults. MaxRetries stays at zero: a failed poll is simply
	// retried on the next tick, and the table snapshot remains a fallback.
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = DefaultFeedBaseURL
	}
	if c.Feed.Currency == "" {
		c.Feed.Currency = DefaultCurrency
	}
	if c.Feed.PageSize == 0 {
		c.Feed.PageSize = DefaultPageSize
	}
	if c.Feed.PollInterval == 0 {
		c.Feed.PollInterval = DefaultPollInterval
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultFeedTimeout
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000"}
	}

	// LLM defaults
	if c.LLM.URL == "" {
		c.LLM.URL = DefaultLLMURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
}
