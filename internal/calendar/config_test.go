package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "oauth with refresh token",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				CalendarID:    "primary",
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: false,
		},
		{
			name: "oauth with token file instead of refresh token",
			config: Config{
				ClientID:     "test-client",
				ClientSecret: "test-secret",
				TokenFile:    "/path/to/token.json",
				CalendarID:   "primary",
			},
			wantErr: false,
		},
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "", // Missing secret
				RefreshToken:  "test-token",
				CalendarID:    "primary",
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "service account",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				CalendarID:         "primary",
			},
			wantErr: false,
		},
		{
			name: "missing calendar ID",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
			},
			wantErr: true,
			errMsg:  "calendar ID cannot be empty",
		},
		{
			name: "negative retry delay",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				CalendarID:         "primary",
				RetryAttempts:      3,
				RetryDelay:         -1 * time.Second,
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
		{
			name: "negative retry attempts",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				CalendarID:         "primary",
				RetryAttempts:      -1,
			},
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "primary", config.CalendarID)
	assert.Equal(t, "Africa/Nairobi", config.TimeZone)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
}
