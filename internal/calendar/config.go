// Package calendar pushes appointments to Google Calendar.
package calendar

import (
	"fmt"
	"os"
	"time"
)

// Config holds the configuration for the Google Calendar pusher.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	TokenFile          string
	CalendarID         string
	TimeZone           string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Events go to the
// authenticated account's primary calendar unless a calendar ID is set.
func DefaultConfig() Config {
	return Config{
		CalendarID:    "primary",
		TimeZone:      "Africa/Nairobi",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv loads the configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	c.ClientID = os.Getenv("GOOGLE_CALENDAR_CLIENT_ID")
	c.ClientSecret = os.Getenv("GOOGLE_CALENDAR_CLIENT_SECRET")
	c.RefreshToken = os.Getenv("GOOGLE_CALENDAR_REFRESH_TOKEN")

	// Service account path is an alternative to OAuth2
	c.ServiceAccountPath = os.Getenv("GOOGLE_CALENDAR_SERVICE_ACCOUNT_PATH")

	if v := os.Getenv("GOOGLE_CALENDAR_ID"); v != "" {
		c.CalendarID = v
	}

	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return fmt.Errorf("missing Google Calendar authentication: provide either service account path or OAuth2 credentials")
	}

	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}

	if c.CalendarID == "" {
		return fmt.Errorf("calendar ID cannot be empty")
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}
