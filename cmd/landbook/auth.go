package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mkinyua/landbook/internal/calendar"
	"github.com/mkinyua/landbook/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services like Google Calendar.`,
	}

	cmd.AddCommand(authCalendarCmd())

	return cmd
}

func authCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Authenticate with Google Calendar",
		Long: `Authenticate with Google Calendar using OAuth2.

This command will:
1. Open your browser to authenticate with Google
2. Save the refresh token for future use
3. Update your config file with the token

You'll need to run this once before pushing appointments.`,
		RunE: runAuthCalendar,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")

	return cmd
}

func runAuthCalendar(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Get OAuth2 config
	clientID := viper.GetString("calendar.client_id")
	clientSecret := viper.GetString("calendar.client_secret")

	// Override with flags if provided
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	// Check for environment variables as fallback
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_CALENDAR_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_CALENDAR_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set calendar.client_id and calendar.client_secret in config or use --client-id and --client-secret flags")
	}

	tokenFile := config.DefaultTokenPath()

	slog.Info("Starting Google Calendar authentication", "token_file", tokenFile)

	// Perform OAuth2 flow
	oauthConfig := calendar.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	}

	token, err := calendar.AuthenticateOAuth2Interactive(ctx, oauthConfig)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	// Update config file with refresh token
	viper.Set("calendar.refresh_token", token.RefreshToken)

	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		slog.Warn("⚠️  Could not save refresh token to config file")
		slog.Info("Please add this to your config.yaml manually:")
		slog.Info(fmt.Sprintf("calendar:\n  refresh_token: \"%s\"", token.RefreshToken))
	} else {
		slog.Info("Updated config file with refresh token")
		slog.Info("✅ Authentication successful!")
	}

	slog.Info("📅 Google Calendar is now configured and ready to use.")
	slog.Info("Run 'landbook appointments add --push' to schedule events.")

	return nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "landbook", "config.yaml")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}
