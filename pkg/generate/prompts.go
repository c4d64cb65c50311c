package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
)

const analysisSystemPrompt = `You are an expert code analyst specializing in React components and UI testing.
Your task is to carefully analyze React component code and identify exactly what UI elements are present.
Be precise and thorough. Do NOT assume elements exist if they are not explicitly in the code.
IMPORTANT: Analyze ALL provided source files including imported local components.`

const interactorSystemPrompt = `You are an expert TypeScript developer specializing in Playwright Page Object Model (POM) patterns.
Generate clean, well-documented interactor classes for UI testing.

CRITICAL RULES:
- ONLY generate methods for UI elements that ACTUALLY EXIST in the widget
- If there is NO table, do NOT generate table methods
- If there is NO search, do NOT generate search methods
- Locate elements by the data-testid values present in the source
- Base your interactor ONLY on the provided analysis`

const testSystemPrompt = `You are an expert QA engineer specializing in Playwright end-to-end testing.
Write comprehensive, maintainable test suites.

CRITICAL RULES:
- ONLY write tests for UI elements that ACTUALLY EXIST
- Import test and expect from "../../../fixtures" (NOT from @playwright/test)
- Use testConfig fixture for entity IDs`

const pageAnalysisSystemPrompt = `You are an expert at analyzing React page components for test generation.
Your task is to analyze page source code and identify:
1. Navigation patterns (tabs, routes)
2. External links
3. GraphQL queries
4. URL parameters
5. Header elements
6. Existing data-testid attributes

Be precise and thorough in your analysis.`

const pageInteractorSystemPrompt = `You are an expert at generating Playwright Page Object Model (POM) classes.
Generate clean, well-documented TypeScript code for page interactors.
Follow the existing patterns and conventions in the codebase.
Use proper Playwright locators and methods.`

const pageTestSystemPrompt = `You are an expert at generating Playwright test suites.
Generate comprehensive, well-organized TypeScript test code.
Follow existing patterns and best practices for Playwright tests.
Use the Page Object Model pattern with interactors.`

const defaultPageInteractorExample = `import type { Locator, Page } from "@playwright/test";

export class ExamplePage {
  page: Page;

  constructor(page: Page) {
    this.page = page;
  }

  async goToPage(id: string): Promise<void> {
    await this.page.goto(` + "`/example/${id}`" + `);
    await this.page.waitForLoadState("networkidle");
  }

  getHeader(): Locator {
    return this.page.locator("[data-testid='header']");
  }

  async waitForPageLoad(): Promise<void> {
    await this.page.waitForLoadState("networkidle");
  }
}`

const defaultPageTestExample = `import { expect, test } from "../../../fixtures";
import { ExamplePage } from "../../../POM/page/example/example";

test.describe("Example Page", () => {
  test.beforeEach(async ({ page, baseURL, testConfig }) => {
    const id = testConfig.example?.primary || "default-id";
    await page.goto(` + "`${baseURL}/example/${id}`" + `);
  });

  test("page loads successfully", async ({ page }) => {
    const examplePage = new ExamplePage(page);
    await examplePage.waitForPageLoad();
    const isLoaded = await examplePage.isPageLoaded();
    expect(isLoaded).toBe(true);
  });
});`

var mainSourceFiles = []string{"index", "Body", "Summary", "Description"}

func fence(b *strings.Builder, lang, code string) {
	fmt.Fprintf(b, "```%s\n%s\n```\n\n", lang, code)
}

// FormatSources renders a widget's files for a prompt: main files, then
// imported local components, then query files.
func FormatSources(u detect.Unit) string {
	var b strings.Builder
	isMain := make(map[string]bool, len(mainSourceFiles))
	for _, name := range mainSourceFiles {
		isMain[name] = true
		if f, ok := u.Source(name); ok && f.Code != "" {
			fmt.Fprintf(&b, "### %s.tsx\n", name)
			fence(&b, "typescript", f.Code)
		}
	}

	var local, queries []detect.SourceFile
	for _, f := range u.Sources {
		switch {
		case isMain[f.Name]:
		case strings.HasSuffix(f.Name, detect.QueryExtension):
			queries = append(queries, f)
		default:
			local = append(local, f)
		}
	}

	if len(local) > 0 {
		b.WriteString("### Imported Local Components\n\n")
		for _, f := range local {
			fmt.Fprintf(&b, "#### %s.tsx\n", f.Name)
			fence(&b, "typescript", f.Code)
		}
	}
	if len(queries) > 0 {
		b.WriteString("### GraphQL Queries\n\n")
		for _, f := range queries {
			fmt.Fprintf(&b, "#### %s\n", f.Name)
			fence(&b, "graphql", f.Code)
		}
	}
	return b.String()
}

// FormatUnitInfo renders the header block describing a widget.
func FormatUnitInfo(u detect.Unit) string {
	return fmt.Sprintf("## Widget Information\n- **Name**: %s\n- **Entity**: %s\n- **Section ID**: %s",
		u.Name, u.Category, u.SectionID())
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

// FormatAnalysis renders an analysis and the feature checklist derived from it.
func FormatAnalysis(a WidgetAnalysis) string {
	data, _ := json.MarshalIndent(a, "", "  ")
	var b strings.Builder
	b.WriteString("## Widget Analysis\n")
	fence(&b, "json", string(data))
	b.WriteString("## What to include based on analysis:\n")
	fmt.Fprintf(&b, "- Table methods: %s\n", yesNo(a.HasTable))
	fmt.Fprintf(&b, "- Search methods: %s\n", yesNo(a.HasSearch))
	fmt.Fprintf(&b, "- Pagination methods: %s\n", yesNo(a.HasPagination))
	fmt.Fprintf(&b, "- Chart methods: %s\n", yesNo(a.HasChart))
	fmt.Fprintf(&b, "- External link methods: %s\n", yesNo(a.HasExternalLinks))
	fmt.Fprintf(&b, "- Download methods: %s", yesNo(a.HasDownloader))
	return b.String()
}

// formatUISources renders UI package component sources so the model can see
// which components forward props to the DOM.
func formatUISources(files []detect.SourceFile) string {
	if len(files) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## UI Package Component Definitions\n")
	b.WriteString("These are the source files for components imported from \"ui\" package.\n")
	b.WriteString("Use these to determine if components accept data-testid (look for prop spreading).\n\n")
	for _, f := range files {
		fmt.Fprintf(&b, "### %s\n", strings.TrimPrefix(f.Name, "ui/"))
		fence(&b, "tsx", f.Code)
	}
	return b.String()
}

func widgetAnalysisPrompt(u detect.Unit, uiSources []detect.SourceFile) string {
	var b strings.Builder
	b.WriteString("## Task\nCarefully analyze the following React widget/section code and ALL its imported local components.\n\n")
	b.WriteString(FormatUnitInfo(u))
	b.WriteString("\n\n## Widget Source Code\n")
	b.WriteString(FormatSources(u))
	b.WriteString(formatUISources(uiSources))
	b.WriteString(`
## Instructions
Analyze ALL provided source files and output JSON:

` + "```json" + `
{
  "uiComponents": ["list", "of", "all", "components", "found"],
  "hasTable": true/false,
  "hasChart": true/false,
  "hasSearch": true/false,
  "hasPagination": true/false,
  "hasExternalLinks": true/false,
  "hasDownloader": true/false,
  "customInteractions": ["list", "of", "interactions"],
  "existingTestIds": ["list", "of", "existing", "testids"],
  "suggestedTestIds": [],
  "reasoning": "Brief explanation of your analysis"
}
` + "```" + `

NOTE: Leave suggestedTestIds empty - data-testid attributes are added separately.`)
	return b.String()
}

func interactorPrompt(u detect.Unit, a WidgetAnalysis, ex Examples) string {
	var b strings.Builder
	b.WriteString("## Task\nGenerate a Playwright interactor class. ONLY include methods for elements that exist.\n\n")
	b.WriteString(FormatUnitInfo(u))
	b.WriteString("\n\n")
	b.WriteString(FormatAnalysis(a))
	b.WriteString("\n\n## Widget Source Code\n")
	b.WriteString(FormatSources(u))
	b.WriteString("## Example Interactor (reference only)\n")
	fence(&b, "typescript", ex.Interactor)
	if ex.InteractorOntology != "" {
		b.WriteString("## Second Example Interactor (reference only)\n")
		fence(&b, "typescript", ex.InteractorOntology)
	}
	b.WriteString("Generate the TypeScript interactor class:")
	return b.String()
}

func testPrompt(u detect.Unit, a WidgetAnalysis, interactor string, ex Examples) string {
	var b strings.Builder
	b.WriteString("## Task\nGenerate a Playwright test file. ONLY include tests for features that exist.\n\n")
	b.WriteString(FormatUnitInfo(u))
	b.WriteString("\n\n")
	b.WriteString(FormatAnalysis(a))
	b.WriteString("\n\n## Widget Source Code\n")
	b.WriteString(FormatSources(u))
	b.WriteString("## Generated Interactor\n")
	fence(&b, "typescript", interactor)
	b.WriteString("## Example Test (reference only)\n")
	fence(&b, "typescript", ex.Test)
	b.WriteString("## Test Config Fixtures\n")
	fence(&b, "typescript", ex.Fixtures)
	b.WriteString("Generate the TypeScript test file:")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func formatPageSources(u detect.Unit) string {
	if len(u.Sources) == 0 {
		return "No source files available."
	}
	var b strings.Builder
	for _, f := range u.Sources {
		fmt.Fprintf(&b, "### %s\n", f.Name)
		fence(&b, "tsx", f.Code)
	}
	return b.String()
}

func pageAnalysisPrompt(u detect.Unit) string {
	var b strings.Builder
	b.WriteString("## Task\nAnalyze the following React page component and extract information for test generation.\n\n")
	fmt.Fprintf(&b, "## Page Information\n- **Name:** %s\n- **Path:** %s\n- **Route:** %s\n- **Entity Type:** %s\n\n",
		u.Name, u.RootPath, orUnknown(u.Route), orUnknown(u.Category))
	if len(u.Tabs) > 0 {
		tabs, _ := json.Marshal(u.Tabs)
		fmt.Fprintf(&b, "## Routes Found In Source\n%s\n\n", tabs)
	}
	b.WriteString("## Page Source Files\n")
	b.WriteString(formatPageSources(u))
	b.WriteString(`## Instructions
Analyze the page code and output JSON:

` + "```json" + `
{
  "components": ["list", "of", "imported", "components"],
  "hasTabs": true/false,
  "tabs": [
    { "name": "Profile", "route": "/target/:id", "label": "Profile" },
    { "name": "Associations", "route": "/target/:id/associations", "label": "Associated diseases" }
  ],
  "hasExternalLinks": true/false,
  "hasQuery": true/false,
  "urlParams": ["ensgId", "efoId"],
  "headerElements": ["symbol", "name", "external links"],
  "routePattern": "/target/:ensgId",
  "entityType": "target",
  "existingTestIds": ["data-testid-1", "data-testid-2"],
  "reasoning": "Brief explanation of your analysis"
}
` + "```" + `

Focus on:
1. Tab navigation (look for Tabs, Tab components and Route definitions)
2. External links in the header (identifiers.org, ensembl, uniprot, etc.)
3. GraphQL queries (useQuery imports)
4. URL parameters (useParams)
5. Header content (title, subtitle, external links section)`)
	return b.String()
}

func jsonString(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func formatPageAnalysis(b *strings.Builder, a PageAnalysis, withTestIDs bool) {
	b.WriteString("## Analysis Results\n")
	fmt.Fprintf(b, "- **Has Tabs:** %t\n", a.HasTabs)
	fmt.Fprintf(b, "- **Tabs:** %s\n", jsonString(a.Tabs))
	fmt.Fprintf(b, "- **Has External Links:** %t\n", a.HasExternalLinks)
	fmt.Fprintf(b, "- **Has Query:** %t\n", a.HasQuery)
	fmt.Fprintf(b, "- **URL Parameters:** %s\n", jsonString(a.URLParams))
	fmt.Fprintf(b, "- **Header Elements:** %s\n", jsonString(a.HeaderElements))
	if withTestIDs {
		fmt.Fprintf(b, "- **Existing Test IDs:** %s\n", jsonString(a.ExistingTestIDs))
	}
	b.WriteString("\n")
}

func pageInfo(b *strings.Builder, u detect.Unit) {
	fmt.Fprintf(b, "## Page Information\n- **Name:** %s\n- **Route:** %s\n- **Entity Type:** %s\n\n",
		u.Name, orUnknown(u.Route), orUnknown(u.Category))
}

func pageInteractorPrompt(u detect.Unit, a PageAnalysis, ex PageExamples) string {
	example := ex.Interactor
	if example == "" {
		example = defaultPageInteractorExample
	}
	var b strings.Builder
	b.WriteString("## Task\nGenerate a Playwright Page Object Model (POM) interactor class for the following page.\n\n")
	pageInfo(&b, u)
	formatPageAnalysis(&b, a, true)
	b.WriteString("## Example Interactor (follow this pattern)\n")
	fence(&b, "typescript", example)
	fmt.Fprintf(&b, `## Requirements
1. Create a class named `+"`%s`"+` (e.g., TargetPage, DiseasePage)
2. Include navigation methods (goTo{PageName})
3. Include tab navigation methods if page has tabs
4. Include methods for external links if present
5. Include methods for header elements
6. Include waitForPageLoad and isPageLoaded methods
7. Use proper TypeScript types
8. Add JSDoc comments for all methods
9. Use data-testid selectors when available, fall back to role/text selectors
10. Return Locator objects for element getters, use async methods for actions

## Output
Generate ONLY the TypeScript code, no explanations:`, u.Name)
	return b.String()
}

var exportedClassRe = regexp.MustCompile(`export class (\w+)`)

// interactorClassName returns the first exported class of code, or fallback.
func interactorClassName(code, fallback string) string {
	if m := exportedClassRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return fallback
}

func pageTestPrompt(u detect.Unit, a PageAnalysis, interactor string, ex PageExamples) string {
	example := ex.Test
	if example == "" {
		example = defaultPageTestExample
	}
	entity := u.Category
	if entity == "" {
		entity = detect.PageEntityType(u.Name)
	}
	className := interactorClassName(interactor, u.Name)

	var b strings.Builder
	b.WriteString("## Task\nGenerate a Playwright test suite for the following page.\n\n")
	pageInfo(&b, u)
	formatPageAnalysis(&b, a, false)
	b.WriteString("## Generated Interactor\n")
	fence(&b, "typescript", interactor)
	b.WriteString("## Example Test (follow this pattern)\n")
	fence(&b, "typescript", example)
	fmt.Fprintf(&b, `## Requirements
1. Import test and expect from fixtures: `+"`import { expect, test } from \"../../../fixtures\";`"+`
2. Import the interactor class: `+"`import { %s } from \"../../../POM/page/%s/%s\";`"+`
3. Use testConfig to get entity IDs (e.g., testConfig.target?.primary)
4. Include test.describe blocks for logical groupings:
   - "Page Header" - tests for title, name, loading
   - "External Links" - tests for each type of external link (if hasExternalLinks)
   - "Tab Navigation" - tests for tab switching (if hasTabs)
   - "Direct Navigation" - tests for direct URL access
   - "Page Title and Meta" - tests for document title
5. Use beforeEach to navigate to the page
6. Create instances of the interactor in each test
7. Use expect assertions from Playwright
8. Handle optional elements gracefully (check visibility before assertions)
9. Use testConfig for entity IDs, with fallback defaults

## Output
Generate ONLY the TypeScript test code, no explanations:`, className, entity, detect.LowerFirst(strings.TrimSuffix(u.Name, "Page")))
	return b.String()
}
