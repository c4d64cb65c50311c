// Package testid decides which JSX elements need a data-testid and inserts
// the missing ones.
package testid

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mattsolo1/grove-testgen/pkg/imports"
)

// IDPlaceholder is replaced with the unit's section id in a Pattern.
const IDPlaceholder = "{id}"

// Target is the policy for one component name.
type Target struct {
	Name string `json:"name"`
	// Pattern builds the hook value, e.g. "{id}-link". Empty means the
	// element is never tagged.
	Pattern string `json:"pattern,omitempty"`
	// OnlyExternal restricts the target to elements with an external prop.
	OnlyExternal bool `json:"onlyExternal,omitempty"`
	// SkipUnlessSpecial restricts the target to elements with className or role.
	SkipUnlessSpecial bool `json:"skipUnlessSpecial,omitempty"`
	// Suppress drops the target entirely.
	Suppress bool   `json:"suppress,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Value substitutes sectionID into the pattern.
func (t Target) Value(sectionID string) string {
	return strings.ReplaceAll(t.Pattern, IDPlaceholder, sectionID)
}

// Targets maps element names to their policy.
type Targets map[string]Target

// Lookup returns the policy for an element name. Suppressed and
// pattern-less targets are reported as absent. A member tag such as
// DataDownloader.Button with no policy of its own follows its root binding,
// with a value named after the full tag.
func (ts Targets) Lookup(name string) (Target, bool) {
	t, ok := ts[name]
	if !ok {
		root, _, dotted := strings.Cut(name, ".")
		if !dotted {
			return Target{}, false
		}
		rt, ok := ts.Lookup(root)
		if !ok {
			return Target{}, false
		}
		return Target{Name: name, Pattern: IDPlaceholder + "-" + Kebab(name), Source: rt.Source}, true
	}
	if t.Suppress || t.Pattern == "" {
		return Target{}, false
	}
	return t, true
}

// Names returns the active target names, sorted.
func (ts Targets) Names() []string {
	var names []string
	for name := range ts {
		if _, ok := ts.Lookup(name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Overrides replace the default policy of UI components with known shapes.
var Overrides = map[string]Target{
	"Box":         {Pattern: "{id}-box", SkipUnlessSpecial: true},
	"Grid":        {Pattern: "{id}-grid", SkipUnlessSpecial: true},
	"Stack":       {Pattern: "{id}-stack", SkipUnlessSpecial: true},
	"Paper":       {Pattern: "{id}-paper", SkipUnlessSpecial: true},
	"Container":   {Pattern: "{id}-container", SkipUnlessSpecial: true},
	"Link":        {Pattern: "{id}-link", OnlyExternal: true},
	"SectionItem": {Suppress: true},
	"SummaryItem": {Suppress: true},
	"Typography":  {Suppress: true},
}

// DefaultTarget derives the policy for a UI component with no override.
func DefaultTarget(name string) Target {
	if o, ok := Overrides[name]; ok {
		o.Name = name
		return o
	}
	if strings.HasSuffix(name, "Provider") || strings.HasSuffix(name, "Context") {
		return Target{Name: name, Suppress: true}
	}
	return Target{Name: name, Pattern: IDPlaceholder + "-" + Kebab(name)}
}

// TargetsFromImports builds policies for every UI-library binding. The
// first binding of a local name wins.
func TargetsFromImports(b imports.Buckets) Targets {
	ts := make(Targets)
	for _, r := range b.UI {
		if _, seen := ts[r.LocalName]; seen {
			continue
		}
		t := DefaultTarget(r.ImportedName())
		t.Name = r.LocalName
		t.Source = r.Source
		ts[r.LocalName] = t
	}
	return ts
}

// Kebab converts a component name to kebab-case: "OtTableRow" becomes
// "ot-table-row", "DataDownloader.Button" becomes "data-downloader-button".
func Kebab(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == '.' || r == '_' || r == '-' || r == ' ':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			continue
		case unicode.IsUpper(r):
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			// A new word after an acronym or a number: HTMLLink, Top10List.
			wordStart := i > 0 && nextLower && (unicode.IsUpper(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			if (prevLower || wordStart) && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
