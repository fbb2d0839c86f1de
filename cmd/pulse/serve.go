package main

import (
	"github.com/spf13/cobra"

	"github.com/garunski/pulse/pkg/pulse"
	"github.com/garunski/pulse/pkg/pulse/config"
)

type serveOptions struct {
	port       string
	dataPath   string
	panelsFile string
	watch      bool
	logFormat  string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.build(cmd)
			if err != nil {
				return err
			}
			return pulse.Run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.port, "port", "", "HTTP port (env PORT)")
	flags.StringVar(&opts.dataPath, "data-path", "", "journal directory, in memory when empty (env PULSE_DATA_PATH)")
	flags.StringVar(&opts.panelsFile, "panels", "", "YAML panels file (env PULSE_PANELS_FILE)")
	flags.BoolVar(&opts.watch, "watch", false, "reload the panels file on change (env PULSE_WATCH_PANELS)")
	flags.StringVar(&opts.logFormat, "log-format", "", "console or json (env PULSE_LOG_FORMAT)")
	return cmd
}

// build layers explicitly set flags over the environment defaults.
func (o *serveOptions) build(cmd *cobra.Command) (pulse.Config, error) {
	b := config.NewBuilder().WithAppVersion(version)
	defaults := pulse.DefaultConfig()
	flags := cmd.Flags()

	if flags.Changed("port") {
		b.WithPort(o.port)
	}
	if flags.Changed("data-path") {
		b.WithDataPath(o.dataPath)
	}
	panelsFile, watch := defaults.PanelsFile, defaults.WatchPanels
	if flags.Changed("panels") {
		panelsFile = o.panelsFile
	}
	if flags.Changed("watch") {
		watch = o.watch
	}
	b.WithPanelsFile(panelsFile, watch)
	if flags.Changed("log-format") {
		b.WithLogFormat(o.logFormat)
	}
	return b.Build()
}
