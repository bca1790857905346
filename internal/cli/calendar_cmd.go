package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/service"
)

func newCalendarCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Connect and auto-schedule onto your calendar",
	}
	cmd.AddCommand(newCalendarAuthCmd(a), newCalendarEventsCmd(a), newCalendarAutoCmd(a), newCalendarRunsCmd(a))
	return cmd
}

func newCalendarAuthCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.ConnectCalendar == nil {
				return errors.New("calendar authorization is not available")
			}
			client, err := a.ConnectCalendar(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("Calendar connected."))

			lister, ok := client.(calendar.CalendarLister)
			if !ok {
				return nil
			}
			cals, err := lister.ListCalendars(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd, cals, func() string {
				rows := make([][]string, 0, len(cals))
				for _, c := range cals {
					primary := ""
					if c.Primary {
						primary = formatter.StyleGreen.Render("●")
					}
					rows = append(rows, []string{primary, c.Summary, formatter.Dim(c.ID), c.TimeZone})
				}
				return formatter.RenderTable([]string{"", "CALENDAR", "ID", "ZONE"}, rows)
			})
		},
	}
}

func newCalendarEventsCmd(a *App) *cobra.Command {
	var from, to time.Time

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List calendar events (default this week)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !to.IsZero() {
				to = to.AddDate(0, 0, 1)
			}
			blocks, err := a.Calendar.ListWeekEvents(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return output(cmd, blocks, func() string { return formatter.FormatBlocks(blocks) })
		},
	}
	loc, err := a.Config.Location()
	if err != nil {
		loc = time.Local
	}
	cmd.Flags().Var(dateFlag{value: &from, loc: loc}, "from", "First day to list")
	cmd.Flags().Var(dateFlag{value: &to, loc: loc}, "to", "Last day to list, inclusive")
	return cmd
}

func newCalendarAutoCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auto [ID...]",
		Short: "Place tasks on the calendar (default every unscheduled task)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res *service.AutoScheduleResult
				err error
			)
			if len(args) == 0 {
				res, err = a.Calendar.ScheduleUnscheduled(cmd.Context(), service.TriggerManual)
			} else {
				ids, perr := parseIDs(args)
				if perr != nil {
					return perr
				}
				res, err = a.Calendar.AutoSchedule(cmd.Context(), ids, service.TriggerManual)
			}
			if err != nil {
				return err
			}
			return output(cmd, res, func() string { return formatter.FormatAutoSchedule(res) })
		},
	}
}

func newCalendarRunsCmd(a *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent auto-scheduling runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := a.Calendar.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return output(cmd, runs, func() string {
				if len(runs) == 0 {
					return "No scheduling runs yet."
				}
				return formatter.FormatRuns(runs)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "How many runs to show")
	return cmd
}
