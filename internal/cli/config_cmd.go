package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/polylearner/internal/config"
)

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as JSON",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := a.Config
				if cfg.LLM.APIKey != "" {
					cfg.LLM.APIKey = "********"
				}
				return writeJSON(cmd.OutOrStdout(), cfg)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the default config file path",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath())
			},
		},
	)
	return cmd
}
