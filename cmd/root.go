package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-testgen/pkg/config"
)

var (
	configPath string
	verbose    bool
)

// NewRootCmd builds the testgen root command with its global flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testgen",
		Short: "Generate Playwright interactors and tests for new widgets and pages",
		Long: `Detects widgets and pages added on the current branch, adds data-testid
attributes to their components, and generates Playwright interactors and test
specs for them with an LLM.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setVerbose(verbose)
			prettyLog.w = cmd.OutOrStdout()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "Path to the configuration file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// loadConfig reads the configuration file and overlays the environment and
// the command's flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("base-branch") {
		cfg.Generation.BaseBranch, _ = flags.GetString("base-branch")
	}
	if flags.Changed("dry-run") {
		cfg.Generation.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("skip-test-hooks") {
		cfg.Generation.SkipTestHooks, _ = flags.GetBool("skip-test-hooks")
	}
	return cfg, nil
}
