package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkinyua/landbook/internal/common"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
)

func TestSQLiteStorage_AppointmentRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	appt := &model.Appointment{
		ID:        uuid.NewString(),
		Title:     "Site visit with Otieno",
		Notes:     "Bring the survey map",
		StartTime: time.Now().Add(48 * time.Hour).Truncate(time.Second),
		CreatedAt: time.Now(),
	}
	if err := store.SaveAppointment(ctx, appt); err != nil {
		t.Fatalf("SaveAppointment failed: %v", err)
	}

	got, err := store.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("GetAppointment failed: %v", err)
	}
	if got.Title != appt.Title {
		t.Errorf("Title = %q, want %q", got.Title, appt.Title)
	}
	if got.Pushed() {
		t.Error("new appointment should not be marked pushed")
	}
}

func TestSQLiteStorage_SetAppointmentEventID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	appt := &model.Appointment{
		ID:        uuid.NewString(),
		Title:     "Title deed handover",
		StartTime: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
	if err := store.SaveAppointment(ctx, appt); err != nil {
		t.Fatalf("SaveAppointment failed: %v", err)
	}

	if err := store.SetAppointmentEventID(ctx, appt.ID, "evt-123"); err != nil {
		t.Fatalf("SetAppointmentEventID failed: %v", err)
	}

	got, err := store.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("GetAppointment failed: %v", err)
	}
	if got.CalendarEventID != "evt-123" {
		t.Errorf("CalendarEventID = %q, want evt-123", got.CalendarEventID)
	}
	if !got.Pushed() {
		t.Error("appointment with an event ID should report pushed")
	}

	err = store.SetAppointmentEventID(ctx, "no-such-appointment", "evt-999")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("unknown appointment = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_ListAppointments_ByStartTime(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	titles := map[string]time.Duration{
		"third":  72 * time.Hour,
		"first":  24 * time.Hour,
		"second": 48 * time.Hour,
	}
	for title, offset := range titles {
		appt := &model.Appointment{
			ID:        uuid.NewString(),
			Title:     title,
			StartTime: base.Add(offset),
			CreatedAt: time.Now(),
		}
		if err := store.SaveAppointment(ctx, appt); err != nil {
			t.Fatalf("SaveAppointment %s failed: %v", title, err)
		}
	}

	appointments, err := store.ListAppointments(ctx)
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(appointments) != 3 {
		t.Fatalf("got %d appointments, want 3", len(appointments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if appointments[i].Title != want {
			t.Errorf("appointments[%d] = %q, want %q", i, appointments[i].Title, want)
		}
	}
}

func TestSQLiteStorage_Expenses(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	amounts := []string{"1500.50", "299.25", "1000"}
	for i, amount := range amounts {
		expense := &model.Expense{
			ID:          uuid.NewString(),
			Type:        "Transport",
			Description: "Fuel",
			Amount:      decimal.RequireFromString(amount),
			Date:        time.Now().Add(time.Duration(i) * time.Hour),
		}
		if err := store.SaveExpense(ctx, expense); err != nil {
			t.Fatalf("SaveExpense failed: %v", err)
		}
	}

	expenses, err := store.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("got %d expenses, want 3", len(expenses))
	}

	total, err := store.TotalExpenses(ctx)
	if err != nil {
		t.Fatalf("TotalExpenses failed: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("2799.75")) {
		t.Errorf("TotalExpenses = %s, want 2799.75", total)
	}
}

func TestSQLiteStorage_TotalExpenses_Empty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	total, err := store.TotalExpenses(context.Background())
	if err != nil {
		t.Fatalf("TotalExpenses failed: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("TotalExpenses on empty table = %s, want 0", total)
	}
}
