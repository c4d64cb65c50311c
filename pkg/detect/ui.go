package detect

import (
	"os"
	"path/filepath"
	"strings"
)

// UIRoots locates the shared UI package inside the workspace.
type UIRoots struct {
	Components string `yaml:"components" json:"components"`
	Providers  string `yaml:"providers" json:"providers"`
	Hooks      string `yaml:"hooks" json:"hooks"`
}

// DefaultUIRoots returns the monorepo's UI package layout.
func DefaultUIRoots() UIRoots {
	return UIRoots{
		Components: "packages/ui/src/components",
		Providers:  "packages/ui/src/providers",
		Hooks:      "packages/ui/src/hooks",
	}
}

// Re-exported primitives whose source tells the analysis nothing new.
var primitiveUIComponents = map[string]bool{
	"Box": true, "Grid": true, "Stack": true, "Paper": true, "Container": true, "Typography": true,
	"Button": true, "IconButton": true, "Fab": true, "TextField": true, "Select": true, "Checkbox": true,
	"Table": true, "TableBody": true, "TableCell": true, "TableHead": true, "TableRow": true,
	"List": true, "ListItem": true, "Card": true, "CardContent": true, "Divider": true,
	"Dialog": true, "DialogTitle": true, "DialogContent": true, "DialogActions": true,
	"Tooltip": true, "Popover": true, "Menu": true, "MenuItem": true, "Tabs": true, "Tab": true,
	"CircularProgress": true, "LinearProgress": true, "Skeleton": true, "Alert": true, "Snackbar": true,
}

// FindUIComponentSource looks up the source of a UI package component.
func FindUIComponentSource(workspace string, roots UIRoots, name string) (SourceFile, bool) {
	candidates := []string{
		filepath.Join(roots.Components, name+".tsx"),
		filepath.Join(roots.Components, name+".ts"),
		filepath.Join(roots.Components, name, "index.tsx"),
		filepath.Join(roots.Components, name, name+".tsx"),
		filepath.Join(roots.Providers, name+".tsx"),
		filepath.Join(roots.Providers, name+".ts"),
		filepath.Join(roots.Providers, name, "index.tsx"),
		filepath.Join(roots.Providers, name, name+".tsx"),
		filepath.Join(roots.Hooks, name+".tsx"),
		filepath.Join(roots.Hooks, name+".ts"),
	}
	if strings.Contains(name, "Section") || name == "SummaryItem" {
		candidates = append(candidates,
			filepath.Join(roots.Components, "Section", name+".tsx"),
			filepath.Join(roots.Components, "Section", name+".ts"),
			filepath.Join(roots.Components, "Summary", name+".tsx"),
		)
	}

	for _, c := range candidates {
		p := filepath.Join(workspace, c)
		if !isFile(p) {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		return SourceFile{Name: "ui/" + name, Path: p, Code: string(data)}, true
	}
	return SourceFile{}, false
}

// ReadUIComponentSources collects the sources of non-primitive components a
// unit imports from the UI package, keyed "ui/<Name>".
func ReadUIComponentSources(workspace string, roots UIRoots, files []SourceFile) []SourceFile {
	var all strings.Builder
	for _, f := range files {
		all.WriteString(f.Code)
		all.WriteString("\n")
	}

	var out []SourceFile
	seen := make(map[string]bool)
	for _, name := range ExtractUIPackageImports(all.String()) {
		if primitiveUIComponents[name] || seen[name] {
			continue
		}
		seen[name] = true
		if f, ok := FindUIComponentSource(workspace, roots, name); ok {
			out = append(out, f)
		}
	}
	return out
}
