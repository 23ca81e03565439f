package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mkinyua/landbook/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return ErrCalendarConnection
		}
		return nil
	}, service.RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return ErrCalendarConnection
	}, service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_StopsOnNonRetryable(t *testing.T) {
	attempts := 0
	permanent := &RetryableError{Err: errors.New("bad credentials"), Retryable: false}
	err := WithRetry(context.Background(), func() error {
		attempts++
		return permanent
	}, service.RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return ErrCalendarConnection
	}, service.RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Second,
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", ErrRateLimit, true},
		{"calendar connection", ErrCalendarConnection, true},
		{"wrapped calendar connection", fmt.Errorf("push: %w", ErrCalendarConnection), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"not found", ErrNotFound, false},
		{"retryable wrapper", &RetryableError{Err: errors.New("x"), Retryable: true}, true},
		{"non-retryable wrapper", &RetryableError{Err: errors.New("x"), Retryable: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	inner := ErrMissingConfig
	err := NewUserError("calendar is not configured", inner)

	assert.Contains(t, err.Error(), "calendar is not configured")
	assert.ErrorIs(t, err, ErrMissingConfig)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "calendar is not configured", userErr.UserMessage)
}
