package syntax

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bodySource = `import { Box, Link } from "ui";

// keep this comment
export default function Body({ id }: { id: string }) {
  const rows  =  [1, 2, 3];   // odd spacing stays
  return (
    <Box className="wrap">
      <Link external to="https://example.org">docs</Link>
      <Link to="/x">local</Link>
      <Table.Row data-testid="row" />
      <>
        <span title={id}>{rows.length}</span>
      </>
    </Box>
  );
}
`

func mustParse(t *testing.T, code string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), code)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func names(els []*Element) []string {
	var out []string
	for _, e := range els {
		n, ok := e.Name()
		if !ok {
			n = "<dynamic>"
		}
		out = append(out, n)
	}
	return out
}

func TestPrint_RoundTripIsIdentity(t *testing.T) {
	inputs := []string{
		bodySource,
		"",
		"export const x = 1\n",
		"const a = <div>\n\t<b>tabs</b>\n</div>;\r\n",
	}
	for _, in := range inputs {
		tree := mustParse(t, in)
		assert.False(t, tree.Modified())
		assert.Equal(t, in, tree.Print())
	}
}

func TestParse_InvalidSource(t *testing.T) {
	_, err := Parse(context.Background(), "export default function ( { return <div></span>; }")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestElements_DocumentOrder(t *testing.T) {
	tree := mustParse(t, bodySource)
	assert.Equal(t, []string{"Box", "Link", "Link", "Table.Row", "span"}, names(tree.Elements()))
}

func TestElement_Attributes(t *testing.T) {
	tree := mustParse(t, bodySource)
	els := tree.Elements()
	require.Len(t, els, 5)

	box, link, local, row, span := els[0], els[1], els[2], els[3], els[4]

	v, ok := box.StringAttribute("className")
	assert.True(t, ok)
	assert.Equal(t, "wrap", v)
	assert.False(t, box.HasAttribute("role"))

	assert.True(t, link.HasAttribute("external"))
	_, ok = link.StringAttribute("external")
	assert.False(t, ok, "boolean attributes have no string value")
	assert.False(t, local.HasAttribute("external"))

	assert.True(t, row.HasTestHook())
	hook, ok := row.TestHook()
	assert.True(t, ok)
	assert.Equal(t, "row", hook)

	_, ok = span.StringAttribute("title")
	assert.False(t, ok, "expression values are not resolved")
}

func TestElement_Position(t *testing.T) {
	tree := mustParse(t, bodySource)
	line, col := tree.Elements()[1].Position()
	assert.Equal(t, 8, line)
	assert.Equal(t, 6, col)
}

func TestElement_PositionOfNestedElements(t *testing.T) {
	tree := mustParse(t, `const v = (
  <Box>
    <Link external>x</Link>
    <Chip />
  </Box>
);
`)
	els := tree.Elements()
	require.Len(t, els, 3)

	tests := []struct {
		name      string
		line, col int
	}{
		{"Box", 2, 2},
		{"Link", 3, 4},
		{"Chip", 4, 4},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := els[i].Name()
			require.True(t, ok)
			assert.Equal(t, tt.name, name)
			line, col := els[i].Position()
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestAddTestHook_InsertsFirstAttribute(t *testing.T) {
	tree := mustParse(t, `const a = <Link external to="/x">x</Link>;
const b = <Icon/>;
`)
	els := tree.Elements()
	require.Len(t, els, 2)

	assert.True(t, els[0].AddTestHook("foo-link"))
	assert.True(t, els[1].AddTestHook("foo-icon"))
	assert.True(t, tree.Modified())

	assert.Equal(t, `const a = <Link data-testid="foo-link" external to="/x">x</Link>;
const b = <Icon data-testid="foo-icon"/>;
`, tree.Print())
}

func TestAddTestHook_NoOpWhenPresent(t *testing.T) {
	src := `const a = <Link data-testid="mine" external>x</Link>;`
	tree := mustParse(t, src)
	el := tree.Elements()[0]

	assert.False(t, el.AddTestHook("other"))
	assert.False(t, tree.Modified())
	assert.Equal(t, src, tree.Print())
}

func TestAddTestHook_SecondCallOnSameElement(t *testing.T) {
	tree := mustParse(t, `const a = <Chip label="x" />;`)
	el := tree.Elements()[0]

	require.True(t, el.AddTestHook("foo-chip"))
	assert.True(t, el.HasTestHook())
	assert.False(t, el.AddTestHook("foo-chip"))
	assert.Equal(t, `const a = <Chip data-testid="foo-chip" label="x" />;`, tree.Print())
}

func TestTestHookValuesAndComponentNames(t *testing.T) {
	tree := mustParse(t, `const a = (
  <Card data-testid="card">
    <Card.Header data-testid="card-header" />
    <Card data-testid={dynamic} />
    <Chip />
  </Card>
);`)

	assert.Equal(t, []string{"card", "card-header"}, tree.TestHookValues())
	assert.Equal(t, []string{"Card", "Card.Header", "Chip"}, tree.ComponentNames())
}
