package main

import (
	"github.com/spf13/cobra"

	"github.com/garunski/pulse/pkg/pulse/panels"
)

func newPanelsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "panels",
		Short: "Validate and print a panels catalogue",
		Long: `Prints the catalogue as YAML. Without --panels the built-in panels are
printed, which is a useful starting point for a custom file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue, err := panels.Load(file)
			if err != nil {
				return err
			}
			data, err := catalogue.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&file, "panels", "", "YAML panels file")
	return cmd
}
