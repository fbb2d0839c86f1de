package main

import (
	"github.com/spf13/cobra"

	"github.com/garunski/pulse/pkg/pulse"
)

var version = "dev"

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Live event panels fed by synthetic streams",
		Long: `pulse runs named panels, each holding a bounded live collection of
synthetic events. Panels are served over HTTP with SSE snapshots and every
lifecycle transition is written to a queryable journal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile != "" {
				pulse.LoadEnvFile(opts.envFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional file of environment defaults")

	cmd.AddCommand(
		newServeCmd(),
		newSimulateCmd(),
		newPanelsCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version + "\n"))
			return err
		},
	}
}
