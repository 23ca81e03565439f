package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mkinyua/landbook/internal/calendar"
	"github.com/mkinyua/landbook/internal/cli"
	"github.com/mkinyua/landbook/internal/config"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"
	"github.com/spf13/cobra"
)

func appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Manage appointments",
		Long:  `Schedule appointments and push them to Google Calendar.`,
	}

	cmd.AddCommand(addAppointmentCmd())
	cmd.AddCommand(listAppointmentsCmd())
	cmd.AddCommand(pushAppointmentCmd())

	return cmd
}

func addAppointmentCmd() *cobra.Command {
	var (
		when  string
		notes string
		push  bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Schedule an appointment",
		Long: `Schedule an appointment. With --push it is also sent to Google Calendar
as a one-hour event with a 30-minute popup reminder.

Example:
  landbook appointments add "Site visit with Otieno" --at "2026-09-03 10:00" --push`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			startTime, err := time.ParseInLocation("2006-01-02 15:04", when, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --at value %q, expected \"2006-01-02 15:04\": %w", when, err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			appointment := &model.Appointment{
				ID:        uuid.NewString(),
				Title:     args[0],
				Notes:     notes,
				StartTime: startTime,
				CreatedAt: time.Now(),
			}

			if err := store.SaveAppointment(ctx, appointment); err != nil {
				return fmt.Errorf("failed to save appointment: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Scheduled %q for %s", appointment.Title, startTime.Format("2006-01-02 15:04"))))

			if push {
				if err := pushToCalendar(cmd, store, appointment); err != nil {
					// The appointment is saved; the push can be retried later
					fmt.Println(cli.FormatWarning(fmt.Sprintf("Calendar push failed: %v", err)))
					fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("Retry with 'landbook appointments push %s'", appointment.ID)))
					return nil
				}
				fmt.Println(cli.FormatSuccess("Pushed to Google Calendar"))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&when, "at", "", `Start time as "2006-01-02 15:04" (local time)`)
	cmd.Flags().StringVar(&notes, "notes", "", "Notes attached to the appointment")
	cmd.Flags().BoolVar(&push, "push", false, "Push to Google Calendar immediately")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func listAppointmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Long:  `Display all appointments in start-time order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			appointments, err := store.ListAppointments(ctx)
			if err != nil {
				return fmt.Errorf("failed to list appointments: %w", err)
			}

			if len(appointments) == 0 {
				fmt.Println(cli.InfoStyle.Render("No appointments found. Use 'landbook appointments add' to schedule one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("When"),
				headerStyle.Render("Title"),
				headerStyle.Render("Calendar"))

			for _, appointment := range appointments {
				synced := cli.SubtleStyle.Render("not pushed")
				if appointment.Pushed() {
					synced = cli.PaidStyle.Render("pushed")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					appointment.ID,
					appointment.StartTime.Format("2006-01-02 15:04"),
					appointment.Title,
					synced)
			}

			return nil
		},
	}
}

func pushAppointmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <id>",
		Short: "Push an appointment to Google Calendar",
		Long:  `Push a saved appointment to Google Calendar and record the event ID.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			appointment, err := store.GetAppointment(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load appointment: %w", err)
			}

			if appointment.Pushed() {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("Already pushed (event %s)", appointment.CalendarEventID)))
				return nil
			}

			if err := pushToCalendar(cmd, store, appointment); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Pushed to Google Calendar"))
			return nil
		},
	}
}

// pushToCalendar sends the appointment to Google Calendar and persists the
// resulting event ID.
func pushToCalendar(cmd *cobra.Command, store service.Storage, appointment *model.Appointment) error {
	ctx := cmd.Context()

	calConfig, err := config.LoadCalendarConfig()
	if err != nil {
		return fmt.Errorf("calendar not configured (run 'landbook auth calendar'): %w", err)
	}

	pusher, err := calendar.NewPusher(ctx, *calConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to connect to Google Calendar: %w", err)
	}

	eventID, err := pusher.Push(ctx, appointment)
	if err != nil {
		return err
	}

	if err := store.SetAppointmentEventID(ctx, appointment.ID, eventID); err != nil {
		return fmt.Errorf("event created (%s) but failed to record it locally: %w", eventID, err)
	}
	appointment.CalendarEventID = eventID

	return nil
}
