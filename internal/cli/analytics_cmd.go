package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/cli/formatter"
)

func newAnalyticsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"stats"},
		Short:   "Look at workload patterns",
	}
	cmd.AddCommand(
		newAnalyticsPatternsCmd(a),
		newAnalyticsRiskCmd(a),
		newAnalyticsGroupsCmd(a),
		newAnalyticsEmbeddingsCmd(a),
		newAnalyticsQueryCmd(a),
	)
	return cmd
}

func newAnalyticsPatternsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Summarize tasks by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Analyzing tasks")
			p, err := a.Analytics.Patterns(cmd.Context())
			stop()
			if err != nil {
				return err
			}
			return output(cmd, p, func() string { return formatter.FormatPatterns(p) })
		},
	}
}

func newAnalyticsRiskCmd(a *App) *cobra.Command {
	var week time.Time

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Check whether the unscheduled work fits in the week",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.Analytics.LoadRisk(cmd.Context(), week)
			if err != nil {
				return err
			}
			return output(cmd, r, func() string {
				return formatter.FormatLoadRisk(r, a.Config.AutoSchedule.MaxDailyHours)
			})
		},
	}
	loc, err := a.Config.Location()
	if err != nil {
		loc = time.Local
	}
	cmd.Flags().Var(dateFlag{value: &week, loc: loc}, "week", "Any date in the week (default this week)")
	return cmd
}

func newAnalyticsGroupsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Group related tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Grouping tasks")
			g, err := a.Analytics.Groups(cmd.Context())
			stop()
			if err != nil {
				return err
			}
			return output(cmd, g, func() string { return formatter.FormatGroups(g) })
		},
	}
}

func newAnalyticsEmbeddingsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "embeddings",
		Short: "Show task embedding vectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.Analytics.Embeddings(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd, e, func() string { return formatter.FormatEmbeddings(e) })
		},
	}
}

func newAnalyticsQueryCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "query QUESTION...",
		Short: "Ask a question about your tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd, a, "Thinking")
			r, err := a.Analytics.Query(cmd.Context(), strings.Join(args, " "))
			stop()
			if err != nil {
				return err
			}
			return output(cmd, r, func() string { return formatter.FormatQuery(r) })
		},
	}
}
