// Package config provides configuration utilities for the application.
package config

import (
	"os"

	"github.com/mkinyua/landbook/internal/calendar"
	"github.com/spf13/viper"
)

// LoadCalendarConfig loads Google Calendar configuration from Viper and
// environment variables. It follows this precedence:
// 1. Viper configuration (from config file or LANDBOOK_ env vars)
// 2. Direct environment variables (GOOGLE_CALENDAR_*)
// 3. Default values
func LoadCalendarConfig() (*calendar.Config, error) {
	config := calendar.DefaultConfig()

	// Load from Viper first
	if v := viper.GetString("calendar.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("calendar.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("calendar.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("calendar.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("calendar.calendar_id"); v != "" {
		config.CalendarID = v
	}
	if v := viper.GetString("calendar.token_file"); v != "" {
		config.TokenFile = ExpandPath(v)
	}
	if v := viper.GetString("calendar.time_zone"); v != "" {
		config.TimeZone = v
	}

	// Override with direct environment variables if not set
	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_CALENDAR_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_CALENDAR_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_CALENDAR_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_CALENDAR_REFRESH_TOKEN")
	}
	if v := os.Getenv("GOOGLE_CALENDAR_ID"); v != "" && viper.GetString("calendar.calendar_id") == "" {
		config.CalendarID = v
	}

	// The saved token from `landbook auth` is the fallback credential
	if config.TokenFile == "" {
		config.TokenFile = DefaultTokenPath()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
