package config

import "time"

// DashboardConfig is the root configuration for a dashboard instance.
type DashboardConfig struct {
	Supabase SupabaseConfig `yaml:"supabase"`
	Feed     FeedConfig     `yaml:"feed"`
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
}

// SupabaseConfig holds table service settings. URL and AnonKey are the only
// required values and are normally supplied via ${SUPABASE_URL} and
// ${SUPABASE_ANON_KEY} environment expansion.
type SupabaseConfig struct {
	URL     string `yaml:"url"`      // Project base URL (e.g. https://xyz.supabase.co)
	AnonKey string `yaml:"anon_key"` // Public (anon) API key
	Table   string `yaml:"table"`    // Watched table (default: crypto_prices)
}

// FeedConfig holds price feed settings.
type FeedConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Currency     string        `yaml:"currency"`
	PageSize     int           `yaml:"page_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// LLMConfig holds settings for the local Llama server used by the query CLI.
type LLMConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}
