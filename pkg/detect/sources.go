package detect

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// SourceExtensions are tried in order when resolving a file name without extension.
var SourceExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// CanonicalFiles are read first, in this order, from every widget directory.
var CanonicalFiles = []string{"index", "Body", "Summary", "Description"}

// QueryExtension marks query-definition files read alongside the sources.
const QueryExtension = ".gql"

// EntryFile is the canonical file that makes a directory a unit.
const EntryFile = "index"

// Import specifiers containing these fragments point at infrastructure, not UI structure.
var noiseImportFragments = []string{"context", "utils"}

// The regex readers below are a fast path for contexts that do not need a
// syntax tree. Unusual import syntax is missed; that is acceptable here.
var (
	localImportRe     = regexp.MustCompile(`import\s+(?:(?:\{[^}]*\})|(?:[^{}\s]+))\s+from\s+['"](\.[^'"]+)['"]`)
	uiPackageImportRe = regexp.MustCompile(`import\s+\{([^}]+)\}\s+from\s+['"]ui['"]`)
	declaredIDRe      = regexp.MustCompile(`id:\s*['"]([^'"]+)['"]`)
	declaredNameRe    = regexp.MustCompile(`name:\s*['"]([^'"]+)['"]`)
)

// ExtractLocalImports returns relative import specifiers from code, skipping
// non-source files and context/util modules.
func ExtractLocalImports(code string) []string {
	var imports []string
	for _, m := range localImportRe.FindAllStringSubmatch(code, -1) {
		spec := m[1]
		if isNoiseImport(spec) {
			continue
		}
		imports = append(imports, spec)
	}
	return imports
}

func isNoiseImport(spec string) bool {
	if ext := path.Ext(spec); ext != "" && !isSourceExtension(ext) {
		return true
	}
	for _, frag := range noiseImportFragments {
		if strings.Contains(spec, frag) {
			return true
		}
	}
	return false
}

func isSourceExtension(ext string) bool {
	for _, e := range SourceExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ExtractUIPackageImports returns the non-aliased names imported from "ui".
func ExtractUIPackageImports(code string) []string {
	var names []string
	for _, m := range uiPackageImportRe.FindAllStringSubmatch(code, -1) {
		for _, part := range strings.Split(m[1], ",") {
			name := strings.TrimSpace(part)
			if name == "" || strings.Contains(name, " as ") {
				continue
			}
			names = append(names, name)
		}
	}
	return names
}

// ResolveImportPath resolves a relative specifier against baseDir, trying each
// extension as a direct file and then as an index file in a directory.
func ResolveImportPath(baseDir, spec string) (string, bool) {
	clean := strings.TrimPrefix(spec, "./")
	for _, ext := range SourceExtensions {
		direct := filepath.Join(baseDir, filepath.FromSlash(clean+ext))
		if isFile(direct) {
			return direct, true
		}
		index := filepath.Join(baseDir, filepath.FromSlash(clean), "index"+ext)
		if isFile(index) {
			return index, true
		}
	}
	return "", false
}

// readFileWithExtension reads baseDir/name with the first extension that exists.
func readFileWithExtension(baseDir, name string) (SourceFile, bool) {
	for _, ext := range SourceExtensions {
		p := filepath.Join(baseDir, name+ext)
		if !isFile(p) {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return SourceFile{}, false
		}
		return SourceFile{Name: name, Path: p, Code: string(data)}, true
	}
	return SourceFile{}, false
}

// ReadUnitSources aggregates a widget's canonical files, the local components
// imported by its Body, and its query files. Read failures are skipped.
func ReadUnitSources(rootDir string) []SourceFile {
	var files []SourceFile
	seen := make(map[string]bool)
	add := func(f SourceFile) {
		if seen[f.Name] {
			return
		}
		seen[f.Name] = true
		files = append(files, f)
	}

	for _, name := range CanonicalFiles {
		if f, ok := readFileWithExtension(rootDir, name); ok {
			add(f)
		}
	}

	for _, f := range files {
		if f.Name != "Body" {
			continue
		}
		for _, spec := range ExtractLocalImports(f.Code) {
			resolved, ok := ResolveImportPath(rootDir, spec)
			if !ok {
				continue
			}
			key := path.Base(strings.TrimPrefix(spec, "./"))
			if seen[key] {
				continue
			}
			data, err := os.ReadFile(resolved)
			if err != nil {
				continue
			}
			add(SourceFile{Name: key, Path: resolved, Code: string(data)})
		}
		break
	}

	for _, f := range readQueryFiles(rootDir) {
		add(f)
	}

	return files
}

func readQueryFiles(dir string) []SourceFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []SourceFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != QueryExtension {
			continue
		}
		p := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		files = append(files, SourceFile{Name: e.Name(), Path: p, Code: string(data)})
	}
	return files
}

// entryInfo pulls the declared id and display name out of a unit's entry file.
func entryInfo(rootDir string) (id, displayName string) {
	f, ok := readFileWithExtension(rootDir, EntryFile)
	if !ok {
		return "", ""
	}
	if m := declaredIDRe.FindStringSubmatch(f.Code); m != nil {
		id = m[1]
	}
	if m := declaredNameRe.FindStringSubmatch(f.Code); m != nil {
		displayName = m[1]
	}
	return id, displayName
}

func hasEntryFile(rootDir string) bool {
	for _, ext := range SourceExtensions {
		if isFile(filepath.Join(rootDir, EntryFile+ext)) {
			return true
		}
	}
	return false
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
