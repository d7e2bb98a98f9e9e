package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *DashboardConfig) Validate() error {
	if c.Supabase.URL == "" {
		return errors.New("supabase.url is required (set SUPABASE_URL)")
	}
	if err := validateHTTPURL("supabase.url", c.Supabase.URL); err != nil {
		return err
	}
	if c.Supabase.AnonKey == "" {
		return errors.New("supabase.anon_key is required (set SUPABASE_ANON_KEY)")
	}
	if c.Supabase.Table == "" {
		return errors.New("supabase.table is required")
	}

	if err := validateHTTPURL("feed.base_url", c.Feed.BaseURL); err != nil {
		return err
	}
	if c.Feed.PageSize < 1 {
		return errors.New("feed.page_size must be >= 1")
	}
	if c.Feed.PollInterval <= 0 {
		return errors.New("feed.poll_interval must be positive")
	}
	if c.Feed.MaxRetries < 0 {
		return errors.New("feed.max_retries must be >= 0")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", field, raw)
	}
	return nil
}
