package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-testgen/pkg/config"
	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/gitdiff"
)

func NewDetectCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List widgets and pages added since the base branch",
		Long: `Diffs HEAD against the base branch, groups added files into widget and page
units, and lists those that have no generated tests yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			result, err := runDetection(cmd, cfg)
			if err != nil {
				return err
			}
			renderDetection(result)

			if outputFile != "" {
				if err := writeJSON(outputFile, result); err != nil {
					return err
				}
				prettyLog.Path("Units written to ", outputFile)
			}
			return nil
		},
	}

	cmd.Flags().String("base-branch", "main", "Branch to diff against")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "Write detected units as JSON to this file")

	return cmd
}

// runDetection finds units among the files added since the base branch.
func runDetection(cmd *cobra.Command, cfg config.Config) (detect.Result, error) {
	ctx := cmd.Context()
	git := gitdiff.NewReader(cfg.Paths.Workspace, logEntry("gitdiff"))
	if !git.IsRepository(ctx) {
		return detect.Result{}, fmt.Errorf("%s is not inside a git repository", cfg.Paths.Workspace)
	}

	changes := git.ChangedFiles(ctx, cfg.Generation.BaseBranch)
	log.WithField("added", len(changes.Added)).Debug("Collected changed files")

	detector := detect.NewDetector(cfg.DetectorOptions(), logEntry("detect"))
	return detector.Detect(changes.Added), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readUnitsFile(path string) (detect.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return detect.Result{}, fmt.Errorf("reading units file: %w", err)
	}
	var result detect.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return detect.Result{}, fmt.Errorf("parsing units file: %w", err)
	}
	return result, nil
}
