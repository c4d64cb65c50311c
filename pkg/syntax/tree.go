// Package syntax parses TSX source into a syntax tree and prints it back,
// keeping every untouched byte of the original text.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// ErrParse is returned when source text does not parse cleanly.
var ErrParse = errors.New("parse error")

// insertion is a pending text insertion at a byte offset of the original source.
type insertion struct {
	offset uint32
	text   string
	seq    int
}

// Tree is a parsed source file. Mutations are recorded as insertions against
// the original text, so Print reproduces unmodified regions byte for byte.
type Tree struct {
	src        []byte
	tree       *sitter.Tree
	root       *sitter.Node
	insertions []insertion
	hooks      map[uint32]string
}

// Parse parses code with the TSX grammar.
func Parse(ctx context.Context, code string) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsx.GetLanguage())

	src := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		msg := "invalid syntax"
		if bad := firstError(root); bad != nil {
			p := bad.StartPoint()
			msg = fmt.Sprintf("unexpected %q at line %d, column %d", snippet(bad.Content(src)), p.Row+1, p.Column+1)
		}
		tree.Close()
		return nil, fmt.Errorf("%w: %s", ErrParse, msg)
	}

	return &Tree{
		src:   src,
		tree:  tree,
		root:  root,
		hooks: make(map[uint32]string),
	}, nil
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() && !c.IsMissing() {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}

func snippet(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

// Close releases the underlying parser tree. Elements obtained from t must
// not be used afterwards.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Root returns the program node.
func (t *Tree) Root() *sitter.Node { return t.root }

// Text returns the original source text covered by n.
func (t *Tree) Text(n *sitter.Node) string { return n.Content(t.src) }

// Modified reports whether any mutation has been recorded.
func (t *Tree) Modified() bool { return len(t.insertions) > 0 }

// Print serializes the tree. Without mutations it returns the input verbatim.
func (t *Tree) Print() string {
	if len(t.insertions) == 0 {
		return string(t.src)
	}

	ins := make([]insertion, len(t.insertions))
	copy(ins, t.insertions)
	sort.SliceStable(ins, func(i, j int) bool {
		if ins[i].offset != ins[j].offset {
			return ins[i].offset < ins[j].offset
		}
		return ins[i].seq < ins[j].seq
	})

	var b strings.Builder
	b.Grow(len(t.src) + 32*len(ins))
	var last uint32
	for _, in := range ins {
		b.Write(t.src[last:in.offset])
		b.WriteString(in.text)
		last = in.offset
	}
	b.Write(t.src[last:])
	return b.String()
}

func (t *Tree) insert(offset uint32, text string) {
	t.insertions = append(t.insertions, insertion{offset: offset, text: text, seq: len(t.insertions)})
}

// Walk visits every named node in document order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(n *sitter.Node) bool) {
	walk(t.root, fn)
}

func walk(n *sitter.Node, fn func(n *sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), fn)
	}
}
