package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/app"
	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/service"
)

func newDaemonCmd(a *App) *cobra.Command {
	var (
		once bool
		spec string
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Auto-schedule unscheduled tasks on a cron schedule",
		Long: "Runs until interrupted, placing every unscheduled task on the calendar at each\n" +
			"tick of daemon.cron. Config file edits are picked up without a restart.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if spec != "" {
				a.Config.Daemon.Cron = spec
			}
			d, err := a.NewDaemon()
			if err != nil {
				return err
			}
			if once {
				res, err := d.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				return output(cmd, res, func() string { return formatter.FormatAutoSchedule(res) })
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Auto-scheduling on %q, Ctrl-C to stop\n", d.Spec())
			return d.Run(ctx, daemonUpdates(ctx, a))
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass and exit")
	cmd.Flags().StringVar(&spec, "cron", "", "Cron spec overriding daemon.cron, e.g. \"0 7 * * 1-5\"")
	return cmd
}

func daemonUpdates(ctx context.Context, a *App) <-chan service.DaemonSettings {
	if a.WatchConfig == nil {
		return nil
	}
	return app.DaemonUpdates(ctx, a.WatchConfig(ctx))
}
