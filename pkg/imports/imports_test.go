package imports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `import React from "react";
import * as Icons from "@fortawesome/free-solid-svg-icons";
import { Link, SectionItem as Item } from "ui";
import { OtTable } from '@ot/ui/table';
import Box from "@mui/material/Box";
import Description from "./Description";
import { columns } from "../shared/columns";
import "./styles.css";
import type { Row } from "./types";

export default function Body() { return <Item />; }
`

func TestExtract_AllSpecifierForms(t *testing.T) {
	records := Extract(context.Background(), source)

	assert.Equal(t, []Record{
		{LocalName: "React", Source: "react", IsDefault: true},
		{LocalName: "Icons", Source: "@fortawesome/free-solid-svg-icons", IsNamespace: true},
		{LocalName: "Link", Source: "ui"},
		{LocalName: "Item", OriginalName: "SectionItem", Source: "ui"},
		{LocalName: "OtTable", Source: "@ot/ui/table"},
		{LocalName: "Box", Source: "@mui/material/Box", IsDefault: true},
		{LocalName: "Description", Source: "./Description", IsDefault: true},
		{LocalName: "columns", Source: "../shared/columns"},
		{LocalName: "Row", Source: "./types"},
	}, records)
}

func TestExtract_UnaliasedSpecifierHasNoOriginalName(t *testing.T) {
	records := Extract(context.Background(), `import { Link as Link } from "ui";`)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].OriginalName)
	assert.Equal(t, "Link", records[0].ImportedName())
}

func TestExtract_ParseFailureYieldsNothing(t *testing.T) {
	assert.Empty(t, Extract(context.Background(), `import { from "ui"; <div></span>`))
}

func TestCategorize_Partition(t *testing.T) {
	records := Extract(context.Background(), source)
	b := Categorize(records)

	assert.Equal(t, []string{"Link", "Item", "OtTable", "Box"}, localNames(b.UI))
	assert.Equal(t, []string{"Description", "columns", "Row"}, localNames(b.Local))
	assert.Equal(t, []string{"React", "Icons"}, localNames(b.Other))

	seen := make(map[Record]int)
	for _, bucket := range [][]Record{b.UI, b.Local, b.Other} {
		for _, r := range bucket {
			seen[r]++
		}
	}
	assert.Len(t, seen, len(records))
	for r, n := range seen {
		assert.Equal(t, 1, n, "record %+v in more than one bucket", r)
	}
}

func TestIsUISource(t *testing.T) {
	tests := []struct {
		spec string
		want bool
	}{
		{"ui", true},
		{"ui/Table", true},
		{"@ot/ui", true},
		{"@ot/ui/chart", true},
		{"@mui/material", true},
		{"uikit", false},
		{"@ot/uix", false},
		{"@mui", false},
		{"./ui", false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUISource(tt.spec))
		})
	}
}

func localNames(records []Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.LocalName)
	}
	return out
}
