package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkinyua/landbook/internal/model"
)

// MockPusher is a mock implementation of CalendarPusher for testing.
type MockPusher struct {
	PushFunc      func(ctx context.Context, appointment *model.Appointment) (string, error)
	PushCalls     []PushCall
	PushCallCount int
	mu            sync.Mutex
}

// PushCall represents a single call to Push.
type PushCall struct {
	Appointment *model.Appointment
	EventID     string
	Error       error
}

// NewMockPusher creates a new mock pusher.
func NewMockPusher() *MockPusher {
	return &MockPusher{
		PushCalls: make([]PushCall, 0),
	}
}

// Push implements the CalendarPusher interface.
func (m *MockPusher) Push(ctx context.Context, appointment *model.Appointment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PushCallCount++

	eventID := fmt.Sprintf("mock-event-%d", m.PushCallCount)
	var err error
	if m.PushFunc != nil {
		eventID, err = m.PushFunc(ctx, appointment)
	}

	m.PushCalls = append(m.PushCalls, PushCall{
		Appointment: appointment,
		EventID:     eventID,
		Error:       err,
	})

	return eventID, err
}
