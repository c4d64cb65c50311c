package detect

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind distinguishes the two unit shapes the detector produces.
type Kind string

const (
	KindWidget Kind = "widget"
	KindPage   Kind = "page"
)

// SourceFile is one file of a unit. Name is the logical key used in prompts
// and for write-back: the base name without extension for source files, the
// full file name for query files.
type SourceFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Code string `json:"code"`
}

// Tab is a navigable sub-route of a page unit.
type Tab struct {
	Name  string `json:"name"`
	Route string `json:"route"`
	Label string `json:"label"`
}

// Unit is a widget or page awaiting test generation. Sources keep discovery
// order; a Unit is treated as a value and rewritten through WithSource.
type Unit struct {
	Kind        Kind         `json:"type"`
	Name        string       `json:"name"`
	Category    string       `json:"entity"`
	RootPath    string       `json:"path"`
	ID          string       `json:"id,omitempty"`
	DisplayName string       `json:"displayName,omitempty"`
	Route       string       `json:"route,omitempty"`
	Tabs        []Tab        `json:"tabs,omitempty"`
	Sources     []SourceFile `json:"sources,omitempty"`
}

// SectionID is the stable prefix for test-hook values: the id declared in the
// entry file, or the lower-cased name.
func (u Unit) SectionID() string {
	if u.ID != "" {
		return u.ID
	}
	return strings.ToLower(u.Name)
}

// Source returns the file registered under name.
func (u Unit) Source(name string) (SourceFile, bool) {
	for _, f := range u.Sources {
		if f.Name == name {
			return f, true
		}
	}
	return SourceFile{}, false
}

// SourceNames lists the logical file names in discovery order.
func (u Unit) SourceNames() []string {
	names := make([]string, 0, len(u.Sources))
	for _, f := range u.Sources {
		names = append(names, f.Name)
	}
	return names
}

// WithSource returns a copy of u whose file name carries code. Unknown names
// are returned unchanged: new files cannot be added without a path.
func (u Unit) WithSource(name, code string) Unit {
	out := u
	out.Sources = make([]SourceFile, len(u.Sources))
	copy(out.Sources, u.Sources)
	for i := range out.Sources {
		if out.Sources[i].Name == name {
			out.Sources[i].Code = code
		}
	}
	if u.Tabs != nil {
		out.Tabs = append([]Tab(nil), u.Tabs...)
	}
	return out
}

// Label identifies the unit in logs and summaries.
func (u Unit) Label() string {
	if u.Category == "" {
		return u.Name
	}
	return u.Category + "/" + u.Name
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
