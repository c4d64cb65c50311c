package detect

import (
	"path/filepath"
	"strings"
)

// ArtifactLayout holds the roots generated artifacts are written under.
// The file names derived from them are relied upon by downstream tooling.
type ArtifactLayout struct {
	WidgetInteractorRoot string `yaml:"widget_interactors" json:"widgetInteractors"`
	WidgetTestRoot       string `yaml:"widget_tests" json:"widgetTests"`
	PageInteractorRoot   string `yaml:"page_interactors" json:"pageInteractors"`
	PageTestRoot         string `yaml:"page_tests" json:"pageTests"`
}

// DefaultArtifactLayout returns the platform-test package layout.
func DefaultArtifactLayout() ArtifactLayout {
	return ArtifactLayout{
		WidgetInteractorRoot: "packages/platform-test/POM/objects/widgets",
		WidgetTestRoot:       "packages/platform-test/e2e/pages",
		PageInteractorRoot:   "packages/platform-test/POM/page",
		PageTestRoot:         "packages/platform-test/e2e/pages",
	}
}

// InteractorPath is where the unit's page-object class lives.
//
//	widget: <root>/<Name>/<name>Section.ts
//	page:   <root>/<entity>/<name without Page>.ts
func (l ArtifactLayout) InteractorPath(u Unit) string {
	if u.Kind == KindPage {
		base := LowerFirst(strings.TrimSuffix(u.Name, "Page"))
		return filepath.Join(l.PageInteractorRoot, pageEntity(u), base+".ts")
	}
	return filepath.Join(l.WidgetInteractorRoot, u.Name, LowerFirst(u.Name)+"Section.ts")
}

// TestPath is where the unit's spec file lives.
//
//	widget: <root>/<entity>/<name lower>.spec.ts
//	page:   <root>/<entity>/<name>.spec.ts
func (l ArtifactLayout) TestPath(u Unit) string {
	if u.Kind == KindPage {
		return filepath.Join(l.PageTestRoot, pageEntity(u), LowerFirst(u.Name)+".spec.ts")
	}
	return filepath.Join(l.WidgetTestRoot, u.Category, strings.ToLower(u.Name)+".spec.ts")
}

// ArtifactsExist reports whether generated output for u is already present.
// For widgets an existing interactor directory counts, as the directory is
// only ever created by a previous generation.
func (l ArtifactLayout) ArtifactsExist(workspace string, u Unit) bool {
	if u.Kind == KindWidget && isDir(filepath.Join(workspace, l.WidgetInteractorRoot, u.Name)) {
		return true
	}
	return isFile(filepath.Join(workspace, l.InteractorPath(u))) ||
		isFile(filepath.Join(workspace, l.TestPath(u)))
}

func pageEntity(u Unit) string {
	if u.Category != "" {
		return u.Category
	}
	return PageEntityType(u.Name)
}

// PageEntityType derives the entity a page serves from its name: TargetPage -> target.
func PageEntityType(pageName string) string {
	return LowerFirst(strings.TrimSuffix(pageName, "Page"))
}
