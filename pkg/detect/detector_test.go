package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func newTestDetector(t *testing.T, workspace string) *Detector {
	t.Helper()
	opts := DefaultOptions()
	opts.Workspace = workspace
	return NewDetector(opts, nil)
}

func TestDetectWidgets_GroupsFilesIntoOneUnit(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "packages/sections/src/target/Foo/index.ts", `export const definition = { id: "fooSection", name: "Foo things" };`)
	writeFile(t, ws, "packages/sections/src/target/Foo/Body.tsx", `export default function Body() { return <div/>; }`)

	d := newTestDetector(t, ws)
	units := d.DetectWidgets([]string{
		"packages/sections/src/target/Foo/Body.tsx",
		"packages/sections/src/target/Foo/index.ts",
	})

	require.Len(t, units, 1)
	u := units[0]
	assert.Equal(t, KindWidget, u.Kind)
	assert.Equal(t, "Foo", u.Name)
	assert.Equal(t, "target", u.Category)
	assert.Equal(t, "packages/sections/src/target/Foo", u.RootPath)
	assert.Equal(t, "fooSection", u.ID)
	assert.Equal(t, "fooSection", u.SectionID())
	assert.Equal(t, "Foo things", u.DisplayName)
	assert.Equal(t, []string{"index", "Body"}, u.SourceNames())
}

func TestDetectWidgets_SectionIDDefaultsToLowerName(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "packages/sections/src/drug/KnownDrugs/index.tsx", `export default {};`)

	units := newTestDetector(t, ws).DetectWidgets([]string{"packages/sections/src/drug/KnownDrugs/index.tsx"})

	require.Len(t, units, 1)
	assert.Empty(t, units[0].ID)
	assert.Equal(t, "knowndrugs", units[0].SectionID())
}

func TestDetectWidgets_Rejections(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "packages/sections/src/bogus/Foo/index.ts", "")
	writeFile(t, ws, "packages/sections/src/bogus/Foo/Body.tsx", "")
	writeFile(t, ws, "packages/sections/src/target/NoEntry/Body.tsx", "")
	writeFile(t, ws, "packages/sections/src/target/index.ts", "")

	d := newTestDetector(t, ws)

	tests := []struct {
		name  string
		added []string
	}{
		{"unknown category", []string{"packages/sections/src/bogus/Foo/Body.tsx"}},
		{"missing entry file", []string{"packages/sections/src/target/NoEntry/Body.tsx"}},
		{"file directly under category", []string{"packages/sections/src/target/index.ts"}},
		{"outside sections root", []string{"apps/other/target/Foo/Body.tsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, d.DetectWidgets(tt.added))
		})
	}
}

func TestDetectWidgets_ExcludesUnitsWithArtifacts(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "packages/sections/src/target/Foo/index.ts", "")
	writeFile(t, ws, "packages/sections/src/disease/Bar/index.ts", "")
	writeFile(t, ws, "packages/sections/src/drug/Baz/index.ts", "")
	writeFile(t, ws, "packages/platform-test/e2e/pages/target/foo.spec.ts", "")
	writeFile(t, ws, "packages/platform-test/POM/objects/widgets/Bar/barSection.ts", "")

	units := newTestDetector(t, ws).DetectWidgets([]string{
		"packages/sections/src/target/Foo/index.ts",
		"packages/sections/src/disease/Bar/index.ts",
		"packages/sections/src/drug/Baz/index.ts",
	})

	require.Len(t, units, 1)
	assert.Equal(t, "Baz", units[0].Name)
}

func TestDetectPages(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "apps/platform/src/pages/TargetPage/TargetPage.tsx", `
const routes = <Routes>
  <Route path="/target/:ensgId" element={<Profile/>} />
  <Route path="/target/:ensgId/associations" element={<Associations/>} />
</Routes>;`)
	writeFile(t, ws, "apps/platform/src/pages/TargetPage/Header.tsx", `export default function Header() {}`)
	writeFile(t, ws, "apps/platform/src/pages/TargetPage/TargetPage.gql", `query TargetPageQuery { target { id } }`)
	writeFile(t, ws, "apps/platform/src/pages/TargetPage/nested/Deep.tsx", ``)

	units := newTestDetector(t, ws).DetectPages([]string{
		"apps/platform/src/pages/TargetPage/TargetPage.tsx",
		"apps/platform/src/pages/TargetPage/Header.tsx",
		"apps/platform/src/pages/index.tsx",
	})

	require.Len(t, units, 1)
	p := units[0]
	assert.Equal(t, KindPage, p.Kind)
	assert.Equal(t, "TargetPage", p.Name)
	assert.Equal(t, "target", p.Category)
	assert.Equal(t, "/target/:ensgId", p.Route)
	assert.Equal(t, []string{"Header", "TargetPage", "TargetPage.gql"}, p.SourceNames())
	assert.Equal(t, []Tab{
		{Name: "Profile", Route: "/target/:ensgId", Label: "Profile"},
		{Name: "Associations", Route: "/target/:ensgId/associations", Label: "Associations"},
	}, p.Tabs)
}

func TestDetectPages_ExistingArtifacts(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "apps/platform/src/pages/DiseasePage/DiseasePage.tsx", "")
	writeFile(t, ws, "packages/platform-test/POM/page/disease/disease.ts", "")

	units := newTestDetector(t, ws).DetectPages([]string{"apps/platform/src/pages/DiseasePage/DiseasePage.tsx"})
	assert.Empty(t, units)
}

func TestDetect_CombinesWidgetsAndPages(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "packages/sections/src/target/Foo/index.ts", "")
	writeFile(t, ws, "apps/platform/src/pages/DrugPage/DrugPage.tsx", "")

	added := []string{
		"packages/sections/src/target/Foo/index.ts",
		"apps/platform/src/pages/DrugPage/DrugPage.tsx",
	}
	res := newTestDetector(t, ws).Detect(added)

	assert.Len(t, res.Widgets, 1)
	assert.Len(t, res.Pages, 1)
	assert.Equal(t, added, res.AddedFiles)
	assert.Equal(t, []string{"Foo", "DrugPage"}, []string{res.Units()[0].Name, res.Units()[1].Name})
}

func TestArtifactLayout_Paths(t *testing.T) {
	l := ArtifactLayout{
		WidgetInteractorRoot: "pom/widgets",
		WidgetTestRoot:       "e2e/pages",
		PageInteractorRoot:   "pom/page",
		PageTestRoot:         "e2e/pages",
	}

	widget := Unit{Kind: KindWidget, Name: "GenTrackTest", Category: "credibleSet"}
	assert.Equal(t, filepath.Join("pom/widgets", "GenTrackTest", "genTrackTestSection.ts"), l.InteractorPath(widget))
	assert.Equal(t, filepath.Join("e2e/pages", "credibleSet", "gentracktest.spec.ts"), l.TestPath(widget))

	page := Unit{Kind: KindPage, Name: "CredibleSetPage", Category: "credibleSet"}
	assert.Equal(t, filepath.Join("pom/page", "credibleSet", "credibleSet.ts"), l.InteractorPath(page))
	assert.Equal(t, filepath.Join("e2e/pages", "credibleSet", "credibleSetPage.spec.ts"), l.TestPath(page))
}

func TestUnit_WithSourceCopies(t *testing.T) {
	u := Unit{Name: "Foo", Sources: []SourceFile{{Name: "Body", Path: "Body.tsx", Code: "old"}}}

	updated := u.WithSource("Body", "new")
	unknown := u.WithSource("Missing", "x")

	assert.Equal(t, "old", u.Sources[0].Code)
	assert.Equal(t, "new", updated.Sources[0].Code)
	assert.Equal(t, u.Sources, unknown.Sources)
}
