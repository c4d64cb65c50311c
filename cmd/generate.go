package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/generate"
	"github.com/mattsolo1/grove-testgen/pkg/llm"
)

func NewGenerateCmd() *cobra.Command {
	var (
		unitsFile  string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate interactors and tests for new widgets and pages",
		Long: `Runs detection (or reads units from --units-file), then for each unit adds
missing data-testid attributes and generates a Playwright interactor and test.
Exits non-zero when any unit fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var result detect.Result
			if unitsFile != "" {
				result, err = readUnitsFile(unitsFile)
			} else {
				result, err = runDetection(cmd, cfg)
			}
			if err != nil {
				return err
			}

			units := result.Units()
			if len(units) == 0 {
				prettyLog.InfoPretty("No new widgets or pages found")
				return nil
			}

			client, err := llm.New(cmd.Context(), cfg.LLMOptions(), logEntry("llm"))
			if err != nil {
				return err
			}

			prettyLog.InfoPretty(fmt.Sprintf("Generating tests for %d unit(s)...", len(units)))
			orch := generate.NewOrchestrator(client, cfg.GenerateOptions(), logEntry("generate"))
			report := orch.RunBatch(cmd.Context(), units)
			renderReport(report, cfg.Generation.DryRun)

			if outputFile != "" {
				if err := writeJSON(outputFile, report); err != nil {
					return err
				}
			}
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d of %d unit(s) failed", n, len(units))
			}
			return nil
		},
	}

	cmd.Flags().String("base-branch", "main", "Branch to diff against")
	cmd.Flags().Bool("dry-run", false, "Generate without writing any file")
	cmd.Flags().Bool("skip-test-hooks", false, "Do not add data-testid attributes to sources")
	cmd.Flags().StringVarP(&unitsFile, "units-file", "u", "", "Read units from a file written by detect --output-file")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "Write the generation report as JSON to this file")

	return cmd
}
