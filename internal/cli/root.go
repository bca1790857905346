package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/app"
	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/config"
)

// App is the assembled application plus the terminal hooks commands need.
type App struct {
	*app.App

	// IsInteractive reports whether prompts and spinners may be shown.
	IsInteractive func() bool
	// ConnectCalendar runs the OAuth flow for "calendar auth".
	ConnectCalendar func(ctx context.Context) (calendar.Client, error)
	// WatchConfig, when set, streams reloaded configs to the daemon.
	WatchConfig func(ctx context.Context) <-chan config.Config
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "polylearner" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "polylearner",
		Short:         "Plan learning tasks into low-context-switch weekly schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "Print machine-readable JSON")

	root.AddCommand(
		newTaskCmd(a),
		newGoalCmd(a),
		newOnboardCmd(a),
		newScheduleCmd(a),
		newCalendarCmd(a),
		newAnalyticsCmd(a),
		newDaemonCmd(a),
		newConfigCmd(a),
	)
	return root
}

// output prints v as JSON under --json, and text() otherwise.
func output(cmd *cobra.Command, v any, text func() string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// spin shows a spinner on stderr while a model call may be running.
func spin(cmd *cobra.Command, a *App, message string) func() {
	asJSON, _ := cmd.Flags().GetBool("json")
	return formatter.StartSpinner(cmd.ErrOrStderr(), a.interactive() && !asJSON && a.LLMAvailable(cmd.Context()), message)
}
