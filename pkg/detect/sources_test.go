package detect

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLocalImports(t *testing.T) {
	code := `
import React from "react";
import { Box } from "ui";
import Table from "./Table";
import { Chart, Legend } from "./components/Chart";
import QUERY from "./Query.gql";
import styles from "./Body.css";
import { useThing } from "../context/ThingContext";
import { fmt } from "./utils";
import Parent from "../Parent";
`
	assert.Equal(t, []string{"./Table", "./components/Chart", "../Parent"}, ExtractLocalImports(code))
	assert.Empty(t, ExtractLocalImports(""))
}

func TestExtractUIPackageImports(t *testing.T) {
	code := `import { SectionItem, Link as UILink, OtTable } from "ui";
import { Box } from '@mui/material';
import { Tooltip } from 'ui';`
	assert.Equal(t, []string{"SectionItem", "OtTable", "Tooltip"}, ExtractUIPackageImports(code))
}

func TestResolveImportPath(t *testing.T) {
	root := t.TempDir()
	direct := writeFile(t, root, "Table.tsx", "")
	index := writeFile(t, root, "Chart/index.ts", "")

	got, ok := ResolveImportPath(root, "./Table")
	require.True(t, ok)
	assert.Equal(t, direct, got)

	got, ok = ResolveImportPath(root, "./Chart")
	require.True(t, ok)
	assert.Equal(t, index, got)

	_, ok = ResolveImportPath(root, "./Missing")
	assert.False(t, ok)
}

func TestReadUnitSources_Order(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.ts", "entry")
	writeFile(t, root, "Body.tsx", `import Summary from "./Summary";
import Table from "./Table";
import Nope from "./Nope";
import Panel from "./panels/Panel";`)
	writeFile(t, root, "Summary.tsx", "summary")
	writeFile(t, root, "Description.tsx", "description")
	writeFile(t, root, "Table.jsx", "table")
	writeFile(t, root, "panels/Panel/index.tsx", "panel")
	writeFile(t, root, "Query.gql", "query")

	files := ReadUnitSources(root)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"index", "Body", "Summary", "Description", "Table", "Panel", "Query.gql"}, names)

	summary := files[2]
	assert.Equal(t, "summary", summary.Code)
	assert.Equal(t, filepath.Join(root, "Summary.tsx"), summary.Path)
	for _, f := range files {
		assert.NotEmpty(t, f.Path, f.Name)
	}
}

func TestReadUnitSources_MissingDirectory(t *testing.T) {
	assert.Empty(t, ReadUnitSources(filepath.Join(t.TempDir(), "absent")))
}

func TestReadUIComponentSources(t *testing.T) {
	ws := t.TempDir()
	roots := DefaultUIRoots()
	writeFile(t, ws, "packages/ui/src/components/OtTable/index.tsx", "table source")
	writeFile(t, ws, "packages/ui/src/providers/PlotProvider.tsx", "provider source")
	writeFile(t, ws, "packages/ui/src/components/Box.tsx", "primitive")

	files := []SourceFile{{Name: "Body", Code: `import { OtTable, Box, PlotProvider, Unknown } from "ui";`}}
	ui := ReadUIComponentSources(ws, roots, files)

	require.Len(t, ui, 2)
	assert.Equal(t, "ui/OtTable", ui[0].Name)
	assert.Equal(t, "table source", ui[0].Code)
	assert.Equal(t, "ui/PlotProvider", ui[1].Name)
}
