package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/intelligence"
)

func newOnboardCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Turn a learning goal into tasks",
	}
	cmd.AddCommand(newOnboardValidateCmd(a), newOnboardSuggestCmd(a), newOnboardCreateCmd(a), newOnboardListCmd(a))
	return cmd
}

func newOnboardValidateCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate GOAL...",
		Short: "Check a goal against the SMART criteria",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Validating goal")
			og, err := a.Onboarding.ValidateGoal(cmd.Context(), strings.Join(args, " "))
			stop()
			if err != nil {
				return err
			}
			return output(cmd, og, func() string { return formatter.FormatGoalValidation(og) })
		},
	}
}

func newOnboardSuggestCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest GOAL...",
		Short: "Suggest tasks for a goal without creating them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Breaking the goal into tasks")
			res := a.Onboarding.SuggestTasks(cmd.Context(), strings.Join(args, " "))
			stop()
			return output(cmd, res, func() string { return formatter.FormatSuggestions(res) })
		},
	}
}

func newOnboardCreateCmd(a *App) *cobra.Command {
	var (
		pick        []int
		noSchedule  bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "create GOAL...",
		Short: "Suggest tasks for a goal, create them and schedule them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.Join(args, " ")
			stop := spin(cmd, a, "Breaking the goal into tasks")
			res := a.Onboarding.SuggestTasks(cmd.Context(), goal)
			stop()
			if len(res.Tasks) == 0 {
				if res.Error != "" {
					return errors.New(res.Error)
				}
				return errors.New("no tasks suggested")
			}

			chosen, err := chooseSuggestions(a, res.Tasks, pick, interactive)
			if err != nil {
				return err
			}
			if len(chosen) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing selected.")
				return nil
			}

			batch, err := a.Onboarding.CreateTasks(cmd.Context(), goal, chosen, !noSchedule)
			if err != nil {
				return err
			}
			return output(cmd, batch, func() string {
				out := formatter.FormatTaskList(batch.Tasks)
				if batch.Scheduling != nil {
					out += "\n\n" + formatter.FormatAutoSchedule(batch.Scheduling)
				}
				return out
			})
		},
	}

	cmd.Flags().IntSliceVar(&pick, "pick", nil, "Suggestion numbers to keep (default all)")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "Do not place the tasks on the calendar")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick suggestions in a form")
	return cmd
}

// chooseSuggestions applies --pick (1-based) or the interactive picker.
func chooseSuggestions(a *App, all []intelligence.SuggestedTask, pick []int, interactive bool) ([]intelligence.SuggestedTask, error) {
	if interactive && a.interactive() {
		var picked []int
		if err := pickSuggestionsForm(all, &picked).Run(); err != nil {
			return nil, err
		}
		pick = pick[:0]
		for _, i := range picked {
			pick = append(pick, i+1)
		}
		if len(pick) == 0 {
			return nil, nil
		}
	}
	if len(pick) == 0 {
		return all, nil
	}
	out := make([]intelligence.SuggestedTask, 0, len(pick))
	for _, n := range pick {
		if n < 1 || n > len(all) {
			return nil, fmt.Errorf("suggestion %d out of range 1-%d", n, len(all))
		}
		out = append(out, all[n-1])
	}
	return out, nil
}

func newOnboardListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List validated goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, err := a.Onboarding.List(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd, goals, func() string {
				if len(goals) == 0 {
					return "No goals validated yet."
				}
				var b strings.Builder
				for _, g := range goals {
					mark := formatter.StyleGreen.Render("✔")
					if !g.Validation.IsValid {
						mark = formatter.StyleYellow.Render("△")
					}
					fmt.Fprintf(&b, "%s %s  %s\n", mark, g.Goal, formatter.Dim(g.CreatedAt.Local().Format("Jan 2")))
				}
				return strings.TrimRight(b.String(), "\n")
			})
		},
	}
}
