package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkinyua/landbook/internal/common"
	"github.com/mkinyua/landbook/internal/model"
)

// SaveAppointment inserts or replaces an appointment.
func (s *SQLiteStorage) SaveAppointment(ctx context.Context, appointment *model.Appointment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAppointment(appointment); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (id, title, notes, start_time, calendar_event_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			notes = excluded.notes,
			start_time = excluded.start_time,
			calendar_event_id = excluded.calendar_event_id
	`,
		appointment.ID,
		appointment.Title,
		appointment.Notes,
		appointment.StartTime,
		appointment.CalendarEventID,
		appointment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save appointment %s: %w", appointment.ID, err)
	}
	return nil
}

// GetAppointment retrieves an appointment by id.
func (s *SQLiteStorage) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT title, notes, start_time, calendar_event_id, created_at
		FROM appointments
		WHERE id = ?
	`, id).Scan(
		&appointment.Title,
		&appointment.Notes,
		&appointment.StartTime,
		&appointment.CalendarEventID,
		&appointment.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("appointment %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return appointment, nil
}

// ListAppointments returns all appointments ordered by start time.
func (s *SQLiteStorage) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, notes, start_time, calendar_event_id, created_at
		FROM appointments
		ORDER BY start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var appointments []model.Appointment
	for rows.Next() {
		var appointment model.Appointment
		if err := rows.Scan(
			&appointment.ID,
			&appointment.Title,
			&appointment.Notes,
			&appointment.StartTime,
			&appointment.CalendarEventID,
			&appointment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, rows.Err()
}

// SetAppointmentEventID records the external calendar event an appointment
// was pushed as.
func (s *SQLiteStorage) SetAppointmentEventID(ctx context.Context, id, eventID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateString(eventID, "eventID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET calendar_event_id = ? WHERE id = ?`, eventID, id)
	if err != nil {
		return fmt.Errorf("failed to set calendar event id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("appointment %s: %w", id, common.ErrNotFound)
	}
	return nil
}
