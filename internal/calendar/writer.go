package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mkinyua/landbook/internal/common"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Default event shape for appointments.
const (
	eventDuration   = time.Hour
	reminderMinutes = 30
)

// Pusher implements the CalendarPusher interface against Google Calendar.
type Pusher struct {
	service *calendar.Service
	logger  *slog.Logger
	config  Config
}

var _ service.CalendarPusher = (*Pusher)(nil)

// NewPusher creates a new Google Calendar pusher.
func NewPusher(ctx context.Context, config Config, logger *slog.Logger) (*Pusher, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc, err := createCalendarService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Pusher{
		config:  config,
		service: svc,
		logger:  logger,
	}, nil
}

// Push creates a one-hour calendar event for the appointment with a popup
// reminder half an hour before it starts. Returns the created event's ID.
func (p *Pusher) Push(ctx context.Context, appointment *model.Appointment) (string, error) {
	if appointment == nil {
		return "", fmt.Errorf("appointment cannot be nil")
	}

	event := p.buildEvent(appointment)

	retryOpts := service.RetryOptions{
		MaxAttempts:  p.config.RetryAttempts,
		InitialDelay: p.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var created *calendar.Event
	err := common.WithRetry(ctx, func() error {
		var insertErr error
		created, insertErr = p.service.Events.Insert(p.config.CalendarID, event).Context(ctx).Do()
		if insertErr != nil {
			return fmt.Errorf("%w: %w", common.ErrCalendarConnection, insertErr)
		}
		return nil
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to push appointment %s: %w", appointment.ID, err)
	}

	p.logger.Info("appointment pushed to calendar",
		"appointment_id", appointment.ID,
		"event_id", created.Id,
		"start", appointment.StartTime.Format(time.RFC3339))

	return created.Id, nil
}

func (p *Pusher) buildEvent(appointment *model.Appointment) *calendar.Event {
	start := appointment.StartTime
	end := start.Add(eventDuration)

	return &calendar.Event{
		Summary:     appointment.Title,
		Description: appointment.Notes,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: p.config.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: p.config.TimeZone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: reminderMinutes},
			},
			// UseDefault=false is dropped from the request unless forced.
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

// createCalendarService creates a Google Calendar API service.
func createCalendarService(ctx context.Context, config Config) (*calendar.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, calendar.CalendarEventsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendar.CalendarEventsScope},
		}

		var token *oauth2.Token
		if config.RefreshToken != "" {
			token = &oauth2.Token{
				RefreshToken: config.RefreshToken,
				TokenType:    "Bearer",
			}
		} else {
			loaded, err := LoadToken(config.TokenFile)
			if err != nil {
				return nil, fmt.Errorf("no refresh token and no saved token file: %w", err)
			}
			token = loaded
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}

	return srv, nil
}
