package syntax

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// TestHookAttr is the attribute generated tests locate elements by.
const TestHookAttr = "data-testid"

var dottedNameRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)

// Element is a JSX element: either a paired element or a self-closing one.
type Element struct {
	tree *Tree
	node *sitter.Node
	tag  *sitter.Node // opening tag, or the element itself when self-closing
}

// Elements returns every named JSX element in document order. Fragments are
// not elements and are skipped; their children are not.
func (t *Tree) Elements() []*Element {
	var out []*Element
	t.Walk(func(n *sitter.Node) bool {
		switch n.Type() {
		case "jsx_element":
			if open := openingTag(n); open != nil && tagNameNode(open) != nil {
				out = append(out, &Element{tree: t, node: n, tag: open})
			}
		case "jsx_self_closing_element":
			if tagNameNode(n) != nil {
				out = append(out, &Element{tree: t, node: n, tag: n})
			}
		}
		return true
	})
	return out
}

func openingTag(n *sitter.Node) *sitter.Node {
	if open := n.ChildByFieldName("open_tag"); open != nil {
		return open
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "jsx_opening_element" {
			return c
		}
	}
	return nil
}

func tagNameNode(tag *sitter.Node) *sitter.Node {
	if name := tag.ChildByFieldName("name"); name != nil {
		return name
	}
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		c := tag.NamedChild(i)
		switch c.Type() {
		case "identifier", "nested_identifier", "member_expression", "jsx_namespace_name":
			return c
		}
	}
	return nil
}

// Name resolves the tag name. Dotted member names are returned whole
// (Namespace.Component); anything else that is not a plain identifier
// path yields false.
func (e *Element) Name() (string, bool) {
	n := tagNameNode(e.tag)
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "identifier":
		return e.tree.Text(n), true
	case "nested_identifier", "member_expression":
		text := strings.Join(strings.Fields(e.tree.Text(n)), "")
		if dottedNameRe.MatchString(text) {
			return text, true
		}
	}
	return "", false
}

// Position returns the 1-based line and 0-based column of the element's
// opening "<". A nested element node can start at the text preceding it, so
// the tag's first token is used rather than the node itself.
func (e *Element) Position() (line, column int) {
	p := e.tag.StartPoint()
	if lt := e.tag.Child(0); lt != nil && lt.Type() == "<" {
		p = lt.StartPoint()
	} else if name := tagNameNode(e.tag); name != nil && name.StartPoint().Column > 0 {
		p = name.StartPoint()
		p.Column--
	}
	return int(p.Row) + 1, int(p.Column)
}

// Attribute is one name="value" pair on an opening tag.
type Attribute struct {
	Name  string
	node  *sitter.Node
	value *sitter.Node
}

// Attributes lists the tag's attributes in source order. Spread attributes
// are not included.
func (e *Element) Attributes() []Attribute {
	var attrs []Attribute
	for i := 0; i < int(e.tag.NamedChildCount()); i++ {
		c := e.tag.NamedChild(i)
		if c.Type() != "jsx_attribute" || c.NamedChildCount() == 0 {
			continue
		}
		a := Attribute{Name: e.tree.Text(c.NamedChild(0)), node: c}
		if c.NamedChildCount() > 1 {
			a.value = c.NamedChild(1)
		}
		attrs = append(attrs, a)
	}
	return attrs
}

// HasAttribute reports whether the tag carries attrName, with or without a value.
func (e *Element) HasAttribute(attrName string) bool {
	for _, a := range e.Attributes() {
		if a.Name == attrName {
			return true
		}
	}
	return false
}

// StringAttribute returns the value of attrName when it is a string literal.
// Expression values ({...}) are not resolved.
func (e *Element) StringAttribute(attrName string) (string, bool) {
	for _, a := range e.Attributes() {
		if a.Name != attrName || a.value == nil || a.value.Type() != "string" {
			continue
		}
		raw := e.tree.Text(a.value)
		if len(raw) >= 2 {
			return raw[1 : len(raw)-1], true
		}
	}
	return "", false
}

// HasTestHook reports whether the element carries the test-hook attribute,
// including one added earlier on this tree.
func (e *Element) HasTestHook() bool {
	if _, ok := e.tree.hooks[e.tag.StartByte()]; ok {
		return true
	}
	return e.HasAttribute(TestHookAttr)
}

// TestHook returns the element's literal test-hook value.
func (e *Element) TestHook() (string, bool) {
	if v, ok := e.tree.hooks[e.tag.StartByte()]; ok {
		return v, true
	}
	return e.StringAttribute(TestHookAttr)
}

// AddTestHook inserts the test-hook attribute as the first attribute of the
// tag. It returns false and changes nothing when one is already present.
func (e *Element) AddTestHook(value string) bool {
	if e.HasTestHook() {
		return false
	}
	name := tagNameNode(e.tag)
	if name == nil {
		return false
	}

	offset := name.EndByte()
	if args := e.tag.ChildByFieldName("type_arguments"); args != nil && args.EndByte() > offset {
		offset = args.EndByte()
	}

	quoted := strings.ReplaceAll(value, `"`, "&quot;")
	e.tree.insert(offset, " "+TestHookAttr+`="`+quoted+`"`)
	e.tree.hooks[e.tag.StartByte()] = value
	return true
}

// TestHookValues returns the literal test-hook values present in the source.
func (t *Tree) TestHookValues() []string {
	var values []string
	for _, e := range t.Elements() {
		if v, ok := e.StringAttribute(TestHookAttr); ok {
			values = append(values, v)
		}
	}
	return values
}

// ComponentNames returns the distinct resolvable tag names in first-seen order.
func (t *Tree) ComponentNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range t.Elements() {
		name, ok := e.Name()
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
