package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-testgen/pkg/config"
	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/generate"
	"github.com/mattsolo1/grove-testgen/pkg/llm"
)

const watchDebounce = 500 * time.Millisecond

func NewWatchCmd() *cobra.Command {
	var runGenerate bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Detect widgets and pages as their files are created",
		Long: `Watches the sections and pages roots and runs detection over newly created
files. With --generate, detected units are generated immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var orch *generate.Orchestrator
			if runGenerate {
				client, err := llm.New(cmd.Context(), cfg.LLMOptions(), logEntry("llm"))
				if err != nil {
					return err
				}
				orch = generate.NewOrchestrator(client, cfg.GenerateOptions(), logEntry("generate"))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchUnits(ctx, cfg, orch)
		},
	}

	cmd.Flags().BoolVar(&runGenerate, "generate", false, "Generate tests for each detected unit")
	cmd.Flags().Bool("dry-run", false, "Generate without writing any file")
	cmd.Flags().Bool("skip-test-hooks", false, "Do not add data-testid attributes to sources")

	return cmd
}

func watchUnits(ctx context.Context, cfg config.Config, orch *generate.Orchestrator) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range []string{cfg.Paths.SectionsRoot, cfg.Paths.PagesRoot} {
		dir := filepath.Join(cfg.Paths.Workspace, filepath.FromSlash(root))
		if err := watchDirectory(dir, watcher); err != nil {
			prettyLog.WarnPretty(fmt.Sprintf("Not watching %s: %v", root, err))
			continue
		}
		prettyLog.Path("Watching ", root)
	}

	detector := detect.NewDetector(cfg.DetectorOptions(), logEntry("detect"))
	pending := make(map[string]bool)
	reported := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := watchDirectory(event.Name, watcher); err != nil {
					log.WithError(err).WithField("dir", event.Name).Debug("Cannot watch new directory")
				}
				continue
			}
			if !isSourceFile(event.Name) {
				continue
			}
			rel, err := filepath.Rel(cfg.Paths.Workspace, event.Name)
			if err != nil {
				continue
			}
			pending[filepath.ToSlash(rel)] = true
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			log.WithError(err).Warn("Watcher error")

		case <-timer.C:
			added := make([]string, 0, len(pending))
			for p := range pending {
				added = append(added, p)
			}
			pending = make(map[string]bool)

			result := detector.Detect(added)
			result.Widgets = unreported(result.Widgets, reported)
			result.Pages = unreported(result.Pages, reported)
			if len(result.Widgets)+len(result.Pages) == 0 {
				continue
			}
			renderDetection(result)
			if orch != nil {
				renderReport(orch.RunBatch(ctx, result.Units()), cfg.Generation.DryRun)
			}
		}
	}
}

func unreported(units []detect.Unit, reported map[string]bool) []detect.Unit {
	var out []detect.Unit
	for _, u := range units {
		if reported[u.RootPath] {
			continue
		}
		reported[u.RootPath] = true
		out = append(out, u)
	}
	return out
}

// watchDirectory recursively adds directories to the watcher
func watchDirectory(path string, watcher *fsnotify.Watcher) error {
	if err := watcher.Add(path); err != nil {
		return err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == ".git" || name == "node_modules" || name == "dist" || name == "build" {
			continue
		}
		// Ignore errors for individual subdirectories
		_ = watchDirectory(filepath.Join(path, name), watcher)
	}

	return nil
}

func isSourceFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == detect.QueryExtension {
		return true
	}
	for _, e := range detect.SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
