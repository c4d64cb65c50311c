package generate

import (
	"os"
	"path/filepath"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
)

// Examples are existing artifacts shown to the model as few-shot references.
// Missing files leave their field empty.
type Examples struct {
	Interactor         string
	InteractorOntology string
	Test               string
	Fixtures           string
}

// PageExamples are the page-level counterparts of Examples.
type PageExamples struct {
	Interactor string
	Test       string
}

// LoadExamples reads the widget examples from the workspace.
func LoadExamples(workspace string, layout detect.ArtifactLayout, fixturesPath string) Examples {
	return Examples{
		Interactor:         readOptional(workspace, filepath.Join(layout.WidgetInteractorRoot, "KnownDrugs", "knownDrugsSection.ts")),
		InteractorOntology: readOptional(workspace, filepath.Join(layout.WidgetInteractorRoot, "Ontology", "ontologySection.ts")),
		Test:               readOptional(workspace, filepath.Join(layout.WidgetTestRoot, "drug", "drugIndications.spec.ts")),
		Fixtures:           readOptional(workspace, fixturesPath),
	}
}

// LoadPageExamples reads the target page artifacts from the workspace.
func LoadPageExamples(workspace string, layout detect.ArtifactLayout) PageExamples {
	return PageExamples{
		Interactor: readOptional(workspace, filepath.Join(layout.PageInteractorRoot, "target", "target.ts")),
		Test:       readOptional(workspace, filepath.Join(layout.PageTestRoot, "target", "targetPage.spec.ts")),
	}
}

func readOptional(workspace, rel string) string {
	if rel == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(workspace, rel))
	if err != nil {
		return ""
	}
	return string(data)
}
