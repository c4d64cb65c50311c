package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-testgen/pkg/config"
)

func NewInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write a configuration file with all defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefaultConfig(configPath); err != nil {
				return err
			}
			prettyLog.Path("Wrote ", configPath)
			return nil
		},
	}
}
