package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/service"
)

func newScheduleCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedule",
		Aliases: []string{"plan"},
		Short:   "Build weekly schedules",
	}
	cmd.AddCommand(
		newScheduleShowCmd(a),
		newScheduleIntelligentCmd(a),
		newScheduleCompareCmd(a),
		newScheduleExportCmd(a),
		newScheduleCommitCmd(a),
	)
	return cmd
}

// weekFlags registers --week, --start and --end with config defaults.
func weekFlags(cmd *cobra.Command, a *App, req *service.ScheduleRequest) {
	loc, err := a.Config.Location()
	if err != nil {
		loc = time.Local
	}
	cmd.Flags().Var(dateFlag{value: &req.WeekStart, loc: loc}, "week", "Any date in the week to plan (default this week)")
	cmd.Flags().IntVar(&req.DailyStart, "start", a.Config.Schedule.DailyStart, "Working day start hour")
	cmd.Flags().IntVar(&req.DailyEnd, "end", a.Config.Schedule.DailyEnd, "Working day end hour")
}

// intelligentFlags adds the preference flags on top of weekFlags.
func intelligentFlags(cmd *cobra.Command, a *App, req *service.IntelligentRequest) {
	weekFlags(cmd, a, &req.ScheduleRequest)
	prefs := a.Config.Schedule.Preferences
	cmd.Flags().StringVar(&req.Preferences.PeakHours, "peak", prefs.PeakHours, "Peak focus hours, e.g. 9-12")
	cmd.Flags().IntVar(&req.Preferences.BreakMinutes, "break", prefs.BreakMinutes, "Break between blocks in minutes")
	cmd.Flags().Float64Var(&req.Preferences.MaxContinuousHours, "max-continuous", prefs.MaxContinuousHours, "Longest block in hours")
}

func newScheduleShowCmd(a *App) *cobra.Command {
	var req service.ScheduleRequest

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Pack tasks sequentially into the week by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.Schedule.Optimized(cmd.Context(), req)
			if err != nil {
				return err
			}
			return output(cmd, s, func() string { return formatter.FormatOptimized(s) })
		},
	}
	weekFlags(cmd, a, &req)
	return cmd
}

func newScheduleIntelligentCmd(a *App) *cobra.Command {
	var req service.IntelligentRequest

	cmd := &cobra.Command{
		Use:   "intelligent",
		Short: "Group related tasks into focus blocks to cut context switching",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Planning the week")
			s, err := a.Schedule.Intelligent(cmd.Context(), req)
			stop()
			if err != nil {
				return err
			}
			return output(cmd, s, func() string { return formatter.FormatIntelligent(s) })
		},
	}
	intelligentFlags(cmd, a, &req)
	cmd.Flags().BoolVar(&req.IncludeEmbeddings, "embeddings", false, "Attach embedding samples to the plan")
	return cmd
}

func newScheduleCompareCmd(a *App) *cobra.Command {
	var req service.IntelligentRequest

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare cognitive tax of the basic and intelligent schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Planning the week")
			c, err := a.Schedule.CompareCognitiveTax(cmd.Context(), req)
			stop()
			if err != nil {
				return err
			}
			return output(cmd, c, func() string { return formatter.FormatComparison(c) })
		},
	}
	intelligentFlags(cmd, a, &req)
	return cmd
}

func newScheduleExportCmd(a *App) *cobra.Command {
	var (
		req  service.ScheduleRequest
		path string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the weekly schedule as iCalendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.Schedule.ExportICS(cmd.Context(), req)
			if err != nil {
				return err
			}
			if path == "" || path == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
			return nil
		},
	}
	weekFlags(cmd, a, &req)
	cmd.Flags().StringVarP(&path, "output", "o", "", "File to write (default stdout)")
	return cmd
}

func newScheduleCommitCmd(a *App) *cobra.Command {
	var req service.IntelligentRequest

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Write the intelligent schedule to the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Planning the week")
			r, err := a.Schedule.CommitIntelligent(cmd.Context(), req)
			stop()
			if err != nil {
				return err
			}
			return output(cmd, r, func() string { return formatter.FormatCommit(r) })
		},
	}
	intelligentFlags(cmd, a, &req)
	return cmd
}
