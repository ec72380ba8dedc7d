package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the tdo CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := NewPrinter(cmd.OutOrStdout(), viper.GetString(keyOutput), viper.GetString("query"))
			if err != nil {
				return err
			}

			return printer.Properties(map[string]string{
				"version": version,
				"commit":  commit,
				"built":   date,
			})
		},
	}
}
