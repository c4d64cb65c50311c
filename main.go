package main

import (
	"os"

	"github.com/mattsolo1/grove-testgen/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	rootCmd.AddCommand(cmd.NewDetectCmd())
	rootCmd.AddCommand(cmd.NewGenerateCmd())
	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewInitConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
