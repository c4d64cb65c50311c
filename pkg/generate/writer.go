package generate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
)

// ArtifactPaths are the workspace-relative locations of a unit's artifacts.
type ArtifactPaths struct {
	Interactor string `json:"interactorPath"`
	Test       string `json:"testPath"`
}

// ArtifactWriter persists generated code at the layout's conventional paths.
type ArtifactWriter struct {
	Workspace string
	Layout    detect.ArtifactLayout
	DryRun    bool
}

// Paths returns where u's artifacts go without touching the filesystem.
func (w ArtifactWriter) Paths(u detect.Unit) ArtifactPaths {
	return ArtifactPaths{
		Interactor: w.Layout.InteractorPath(u),
		Test:       w.Layout.TestPath(u),
	}
}

// Write stores both artifacts, creating parent directories. In dry-run mode
// it only computes the paths.
func (w ArtifactWriter) Write(u detect.Unit, interactor, test string) (ArtifactPaths, error) {
	paths := w.Paths(u)
	if w.DryRun {
		return paths, nil
	}

	interactorFile := filepath.Join(w.Workspace, paths.Interactor)
	testFile := filepath.Join(w.Workspace, paths.Test)
	for _, dir := range []string{filepath.Dir(interactorFile), filepath.Dir(testFile)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return paths, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(interactorFile, []byte(interactor), 0644); err != nil {
		return paths, fmt.Errorf("writing interactor: %w", err)
	}
	if err := os.WriteFile(testFile, []byte(test), 0644); err != nil {
		return paths, fmt.Errorf("writing test: %w", err)
	}
	return paths, nil
}
