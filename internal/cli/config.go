package cli

import (
	"github.com/spf13/cobra"
)

// configCommand creates the command that prints the effective settings.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as TOML",
		Long:  `Print the settings every other command would use: the defaults, overridden by --config. The output is a valid settings file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
