package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/domain"
)

func newGoalCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals"},
		Short:   "Manage weekly goals",
	}
	cmd.AddCommand(newGoalAddCmd(a), newGoalListCmd(a), newGoalReviewCmd(a))
	return cmd
}

func newGoalAddCmd(a *App) *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "add GOAL...",
		Short: "Set a goal for a week",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.Goals.Create(cmd.Context(), week, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return output(cmd, g, func() string { return formatter.FormatWeeklyGoals([]domain.WeeklyGoal{*g}) })
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "Week number")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newGoalListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List weekly goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, err := a.Goals.List(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd, goals, func() string {
				if len(goals) == 0 {
					return "No weekly goals yet."
				}
				return formatter.FormatWeeklyGoals(goals)
			})
		},
	}
}

func newGoalReviewCmd(a *App) *cobra.Command {
	var r domain.Review

	cmd := &cobra.Command{
		Use:   "review ID",
		Short: "Review a finished week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			g, err := a.Goals.AddReview(cmd.Context(), id, r)
			if err != nil {
				return err
			}
			return output(cmd, g, func() string { return formatter.FormatWeeklyGoals([]domain.WeeklyGoal{*g}) })
		},
	}
	reviewFlags(cmd, &r)
	return cmd
}
