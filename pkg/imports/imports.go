// Package imports extracts import bindings from TSX source and buckets them
// by where the imported module lives.
package imports

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mattsolo1/grove-testgen/pkg/syntax"
)

// Record is one imported binding.
type Record struct {
	LocalName string `json:"localName"`
	// OriginalName is set only for aliased named imports.
	OriginalName string `json:"originalName,omitempty"`
	Source       string `json:"source"`
	IsDefault    bool   `json:"isDefault"`
	IsNamespace  bool   `json:"isNamespace"`
}

// ImportedName is the exported name the binding refers to.
func (r Record) ImportedName() string {
	if r.OriginalName != "" {
		return r.OriginalName
	}
	return r.LocalName
}

// Buckets partitions a file's records by module specifier.
type Buckets struct {
	UI    []Record `json:"uiComponents"`
	Local []Record `json:"localComponents"`
	Other []Record `json:"otherImports"`
}

// UIPackages are matched exactly or as a path prefix ("ui" matches "ui/Table").
var UIPackages = []string{"@ot/ui", "ui"}

// UIScopes are matched as a scope prefix ("@mui" matches "@mui/material").
var UIScopes = []string{"@mui"}

// Extract returns the import bindings of code in source order. Unparseable
// code yields no records.
func Extract(ctx context.Context, code string) []Record {
	tree, err := syntax.Parse(ctx, code)
	if err != nil {
		return nil
	}
	defer tree.Close()
	return FromTree(tree)
}

// FromTree returns the import bindings of an already parsed tree.
func FromTree(tree *syntax.Tree) []Record {
	var records []Record
	root := tree.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "import_statement" {
			continue
		}
		source := stmt.ChildByFieldName("source")
		if source == nil {
			continue
		}
		spec := unquote(tree.Text(source))
		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			if clause := stmt.NamedChild(j); clause.Type() == "import_clause" {
				records = append(records, clauseRecords(tree, clause, spec)...)
			}
		}
	}
	return records
}

func clauseRecords(tree *syntax.Tree, clause *sitter.Node, spec string) []Record {
	var records []Record
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "identifier":
			records = append(records, Record{LocalName: tree.Text(c), Source: spec, IsDefault: true})
		case "namespace_import":
			if id := lastIdentifier(c); id != nil {
				records = append(records, Record{LocalName: tree.Text(id), Source: spec, IsNamespace: true})
			}
		case "named_imports":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if s := c.NamedChild(j); s.Type() == "import_specifier" {
					if r, ok := specifierRecord(tree, s, spec); ok {
						records = append(records, r)
					}
				}
			}
		}
	}
	return records
}

func specifierRecord(tree *syntax.Tree, s *sitter.Node, spec string) (Record, bool) {
	name := s.ChildByFieldName("name")
	if name == nil {
		return Record{}, false
	}
	imported := unquote(tree.Text(name))
	r := Record{LocalName: imported, Source: spec}
	if alias := s.ChildByFieldName("alias"); alias != nil {
		if local := tree.Text(alias); local != imported {
			r.LocalName = local
			r.OriginalName = imported
		}
	}
	return r, true
}

func lastIdentifier(n *sitter.Node) *sitter.Node {
	var id *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "identifier" {
			id = c
		}
	}
	return id
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// IsUISource reports whether a module specifier names the UI library.
func IsUISource(spec string) bool {
	for _, p := range UIPackages {
		if spec == p || strings.HasPrefix(spec, p+"/") {
			return true
		}
	}
	for _, scope := range UIScopes {
		if strings.HasPrefix(spec, scope+"/") {
			return true
		}
	}
	return false
}

// IsLocalSource reports whether a module specifier is a relative path.
func IsLocalSource(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// Categorize partitions records into exactly one bucket each, keeping order.
func Categorize(records []Record) Buckets {
	var b Buckets
	for _, r := range records {
		switch {
		case IsUISource(r.Source):
			b.UI = append(b.UI, r)
		case IsLocalSource(r.Source):
			b.Local = append(b.Local, r)
		default:
			b.Other = append(b.Other, r)
		}
	}
	return b
}

// Analyze extracts and categorizes the imports of code.
func Analyze(ctx context.Context, code string) Buckets {
	return Categorize(Extract(ctx, code))
}
