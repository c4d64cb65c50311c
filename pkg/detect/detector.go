// Package detect finds newly added widgets and pages and reads their sources.
package detect

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

// Categories is the closed set of entity directories widgets live under.
var Categories = []string{
	"target",
	"disease",
	"drug",
	"evidence",
	"variant",
	"study",
	"credibleSet",
}

// Options configures a Detector. Roots are relative to Workspace and use
// forward slashes, matching the paths git reports.
type Options struct {
	Workspace    string
	SectionsRoot string
	PagesRoot    string
	Categories   []string
	Layout       ArtifactLayout
}

// DefaultOptions returns the monorepo's layout rooted at the current directory.
func DefaultOptions() Options {
	return Options{
		Workspace:    ".",
		SectionsRoot: "packages/sections/src",
		PagesRoot:    "apps/platform/src/pages",
		Categories:   Categories,
		Layout:       DefaultArtifactLayout(),
	}
}

// Result is the outcome of one detection pass.
type Result struct {
	Widgets    []Unit   `json:"widgets"`
	Pages      []Unit   `json:"pages"`
	AddedFiles []string `json:"addedFiles"`
}

// Units returns widgets followed by pages.
func (r Result) Units() []Unit {
	units := make([]Unit, 0, len(r.Widgets)+len(r.Pages))
	units = append(units, r.Widgets...)
	return append(units, r.Pages...)
}

// Detector groups added files into units awaiting generation.
type Detector struct {
	opts       Options
	categories map[string]bool
	log        *logrus.Entry
}

// NewDetector creates a Detector. Empty option fields take their defaults.
func NewDetector(opts Options, log *logrus.Entry) *Detector {
	defaults := DefaultOptions()
	if opts.Workspace == "" {
		opts.Workspace = defaults.Workspace
	}
	if opts.SectionsRoot == "" {
		opts.SectionsRoot = defaults.SectionsRoot
	}
	if opts.PagesRoot == "" {
		opts.PagesRoot = defaults.PagesRoot
	}
	if len(opts.Categories) == 0 {
		opts.Categories = defaults.Categories
	}
	if opts.Layout == (ArtifactLayout{}) {
		opts.Layout = defaults.Layout
	}
	opts.SectionsRoot = strings.TrimSuffix(filepath.ToSlash(opts.SectionsRoot), "/")
	opts.PagesRoot = strings.TrimSuffix(filepath.ToSlash(opts.PagesRoot), "/")

	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}

	cats := make(map[string]bool, len(opts.Categories))
	for _, c := range opts.Categories {
		cats[c] = true
	}
	return &Detector{opts: opts, categories: cats, log: log.WithField("component", "detect")}
}

// Options returns the effective options.
func (d *Detector) Options() Options { return d.opts }

// Detect runs widget and page detection over the same added-file list.
func (d *Detector) Detect(added []string) Result {
	return Result{
		Widgets:    d.DetectWidgets(added),
		Pages:      d.DetectPages(added),
		AddedFiles: added,
	}
}

// splitUnder returns the path segments of file below root, or nil when file
// is not under root.
func splitUnder(file, root string) []string {
	file = filepath.ToSlash(file)
	if !strings.HasPrefix(file, root+"/") {
		return nil
	}
	return strings.Split(strings.TrimPrefix(file, root+"/"), "/")
}

func (d *Detector) fsPath(rel string) string {
	return filepath.Join(d.opts.Workspace, filepath.FromSlash(rel))
}

// DetectWidgets finds widget directories (<sections>/<category>/<Name>) that
// received added files, have an entry file, and have no generated artifacts.
func (d *Detector) DetectWidgets(added []string) []Unit {
	var units []Unit
	processed := make(map[string]bool)

	for _, file := range added {
		parts := splitUnder(file, d.opts.SectionsRoot)
		if len(parts) < 2 {
			continue
		}
		category, name := parts[0], parts[1]
		if !d.categories[category] {
			continue
		}

		unitPath := path.Join(d.opts.SectionsRoot, category, name)
		if processed[unitPath] {
			continue
		}
		processed[unitPath] = true

		dir := d.fsPath(unitPath)
		if !hasEntryFile(dir) {
			d.log.WithField("path", unitPath).Debug("Skipping directory without entry file")
			continue
		}

		id, displayName := entryInfo(dir)
		unit := Unit{
			Kind:        KindWidget,
			Name:        name,
			Category:    category,
			RootPath:    unitPath,
			ID:          id,
			DisplayName: displayName,
			Sources:     ReadUnitSources(dir),
		}

		if d.opts.Layout.ArtifactsExist(d.opts.Workspace, unit) {
			d.log.WithField("unit", unit.Label()).Debug("Skipping widget with existing tests")
			continue
		}

		d.log.WithFields(logrus.Fields{
			"unit":    unit.Label(),
			"sources": len(unit.Sources),
		}).Info("Detected new widget")
		units = append(units, unit)
	}

	return units
}

var (
	routePathRe    = regexp.MustCompile(`path\s*[:=]\s*\{?\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	routeElementRe = regexp.MustCompile(`<Route\b[^>]*?\bpath\s*=\s*\{?\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
)

// DetectPages finds page directories (<pages>/<PageName>/...) that received
// added files and have no generated artifacts.
func (d *Detector) DetectPages(added []string) []Unit {
	var units []Unit
	processed := make(map[string]bool)

	for _, file := range added {
		parts := splitUnder(file, d.opts.PagesRoot)
		if len(parts) < 2 {
			continue
		}
		name := parts[0]
		pagePath := path.Join(d.opts.PagesRoot, name)
		if processed[pagePath] {
			continue
		}
		processed[pagePath] = true

		dir := d.fsPath(pagePath)
		if !isDir(dir) {
			continue
		}

		sources := ReadPageSources(dir)
		route, tabs := pageRoutes(sources)
		entity := PageEntityType(name)
		if route == "" {
			route = "/" + entity + "/:id"
		}

		unit := Unit{
			Kind:     KindPage,
			Name:     name,
			Category: entity,
			RootPath: pagePath,
			Route:    route,
			Tabs:     tabs,
			Sources:  sources,
		}

		if d.opts.Layout.ArtifactsExist(d.opts.Workspace, unit) {
			d.log.WithField("unit", unit.Label()).Debug("Skipping page with existing tests")
			continue
		}

		d.log.WithFields(logrus.Fields{
			"unit":  unit.Label(),
			"route": route,
			"tabs":  len(tabs),
		}).Info("Detected new page")
		units = append(units, unit)
	}

	return units
}

// ReadPageSources reads every source and query file directly inside dir.
func ReadPageSources(dir string) []SourceFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files, queries []SourceFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		p := filepath.Join(dir, e.Name())
		switch {
		case isSourceExtension(ext):
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			files = append(files, SourceFile{Name: strings.TrimSuffix(e.Name(), ext), Path: p, Code: string(data)})
		case ext == QueryExtension:
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			queries = append(queries, SourceFile{Name: e.Name(), Path: p, Code: string(data)})
		}
	}
	return append(files, queries...)
}

// pageRoutes returns the first route literal in the page sources and one tab
// per <Route path> element.
func pageRoutes(files []SourceFile) (string, []Tab) {
	var route string
	var tabs []Tab
	seen := make(map[string]bool)

	for _, f := range files {
		if route == "" {
			if m := routePathRe.FindStringSubmatch(f.Code); m != nil {
				route = m[1]
			}
		}
		for _, m := range routeElementRe.FindAllStringSubmatch(f.Code, -1) {
			r := m[1]
			if seen[r] {
				continue
			}
			seen[r] = true
			name := tabName(r)
			tabs = append(tabs, Tab{Name: name, Route: r, Label: name})
		}
	}
	return route, tabs
}

// tabName derives a display name from the last static segment of a route.
// The entity root itself is the profile tab.
func tabName(route string) string {
	segments := strings.Split(strings.Trim(route, "/"), "/")
	for i := len(segments) - 1; i > 0; i-- {
		s := segments[i]
		if s == "" || strings.HasPrefix(s, ":") || s == "*" {
			continue
		}
		words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
		for j, w := range words {
			r := []rune(w)
			r[0] = unicode.ToUpper(r[0])
			words[j] = string(r)
		}
		return strings.Join(words, " ")
	}
	return "Profile"
}
