package model

import "time"

// Appointment is a scheduled meeting, optionally mirrored to an external
// calendar. CalendarEventID is empty until the appointment has been pushed.
type Appointment struct {
	StartTime       time.Time
	CreatedAt       time.Time
	ID              string
	Title           string
	Notes           string
	CalendarEventID string
}

// Pushed reports whether the appointment already exists on the external calendar.
func (a *Appointment) Pushed() bool {
	return a.CalendarEventID != ""
}
