package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/domain"
)

func newTaskCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage learning tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskListCmd(a),
		newTaskShowCmd(a),
		newTaskDeleteCmd(a),
		newTaskReviewCmd(a),
	)
	return cmd
}

func newTaskAddCmd(a *App) *cobra.Command {
	var (
		t           domain.Task
		weeklyGoal  int
		noSchedule  bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task and place it on the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive || (t.Title == "" && a.interactive()) {
				form, fields := newTaskForm(&t)
				if err := form.Run(); err != nil {
					return err
				}
				if err := fields.apply(&t); err != nil {
					return err
				}
			}
			if weeklyGoal > 0 {
				t.WeeklyGoalID = &weeklyGoal
			}

			created, err := a.Tasks.Create(cmd.Context(), &t, !noSchedule)
			if err != nil {
				return err
			}
			return output(cmd, created, func() string { return formatter.FormatTask(created) })
		},
	}

	f := cmd.Flags()
	f.StringVar(&t.Title, "title", "", "Task title")
	f.Var(categoryFlag{&t.Category}, "category", "research, coding, admin or networking")
	f.StringVar(&t.Goal, "goal", "", "What finishing the task achieves")
	f.StringVar((*string)(&t.Artifact), "artifact", string(domain.ArtifactNotes), "article, notes or code")
	f.Float64Var(&t.TimeHours, "hours", 0, "Estimated hours")
	f.Var(priorityFlag{&t.Priority}, "priority", "Priority from 1 to 10 (default 5)")
	f.IntVar(&weeklyGoal, "weekly-goal", 0, "Weekly goal id to attach the task to")
	f.BoolVar(&noSchedule, "no-schedule", false, "Do not place the task on the calendar")
	f.BoolVarP(&interactive, "interactive", "i", false, "Fill the task in a form")

	return cmd
}

func newTaskListCmd(a *App) *cobra.Command {
	var (
		category    domain.Category
		unscheduled bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.Tasks.List(cmd.Context())
			if err != nil {
				return err
			}
			filtered := make([]domain.Task, 0, len(tasks))
			for _, t := range tasks {
				if category != "" && t.Category != category {
					continue
				}
				if unscheduled && t.IsScheduled() {
					continue
				}
				filtered = append(filtered, t)
			}
			return output(cmd, filtered, func() string {
				if len(filtered) == 0 {
					return "No tasks found."
				}
				return formatter.FormatTaskList(filtered)
			})
		},
	}

	cmd.Flags().Var(categoryFlag{&category}, "category", "Only tasks in this category")
	cmd.Flags().BoolVar(&unscheduled, "unscheduled", false, "Only tasks without calendar events")
	return cmd
}

func newTaskShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.Tasks.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return output(cmd, t, func() string { return formatter.FormatTask(t) })
		},
	}
}

func newTaskDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.Tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		},
	}
}

// reviewFlags registers the flags shared by task and weekly goal reviews.
func reviewFlags(cmd *cobra.Command, r *domain.Review) {
	cmd.Flags().IntVar(&r.FocusRate, "focus", 0, "Focus rating from 1 to 10")
	cmd.Flags().Var(onTimeFlag{&r.DoneOnTime}, "on-time", "Whether it was done on time (yes or no)")
	cmd.Flags().StringVar(&r.Notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("focus")
	_ = cmd.MarkFlagRequired("on-time")
}

func newTaskReviewCmd(a *App) *cobra.Command {
	var r domain.Review

	cmd := &cobra.Command{
		Use:   "review ID",
		Short: "Record how a task went",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.Tasks.AddReview(cmd.Context(), id, r)
			if err != nil {
				return err
			}
			return output(cmd, t, func() string { return formatter.FormatTask(t) })
		},
	}
	reviewFlags(cmd, &r)
	return cmd
}
