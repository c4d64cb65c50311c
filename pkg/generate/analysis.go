package generate

import (
	"strings"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/llm"
)

// FallbackReasoning marks an analysis built from keyword matching.
const FallbackReasoning = "Fallback analysis based on keyword matching"

// SuggestedTestID is a test id the model proposes for an element.
type SuggestedTestID struct {
	Element string `json:"element"`
	TestID  string `json:"testId"`
	File    string `json:"file,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// WidgetAnalysis describes which interactive features a widget renders.
// Every field is always populated; lists are never nil.
type WidgetAnalysis struct {
	UIComponents       []string          `json:"uiComponents"`
	HasTable           bool              `json:"hasTable"`
	HasChart           bool              `json:"hasChart"`
	HasSearch          bool              `json:"hasSearch"`
	HasPagination      bool              `json:"hasPagination"`
	HasExternalLinks   bool              `json:"hasExternalLinks"`
	HasDownloader      bool              `json:"hasDownloader"`
	CustomInteractions []string          `json:"customInteractions"`
	ExistingTestIDs    []string          `json:"existingTestIds"`
	SuggestedTestIDs   []SuggestedTestID `json:"suggestedTestIds"`
	Reasoning          string            `json:"reasoning"`
	Fallback           bool              `json:"-"`
}

// rawWidgetAnalysis is the reply shape before validation.
type rawWidgetAnalysis struct {
	UIComponents       []string          `json:"uiComponents"`
	HasTable           *bool             `json:"hasTable"`
	HasChart           *bool             `json:"hasChart"`
	HasSearch          *bool             `json:"hasSearch"`
	HasPagination      *bool             `json:"hasPagination"`
	HasExternalLinks   *bool             `json:"hasExternalLinks"`
	HasDownloader      *bool             `json:"hasDownloader"`
	CustomInteractions []string          `json:"customInteractions"`
	ExistingTestIDs    []string          `json:"existingTestIds"`
	SuggestedTestIDs   []SuggestedTestID `json:"suggestedTestIds"`
	Reasoning          string            `json:"reasoning"`
}

// ParseWidgetAnalysis validates a model reply. It reports false when the
// reply has no decodable JSON or lacks any of the feature flags.
func ParseWidgetAnalysis(reply string) (WidgetAnalysis, bool) {
	var raw rawWidgetAnalysis
	if !llm.ExtractJSON(reply, &raw) {
		return WidgetAnalysis{}, false
	}
	for _, flag := range []*bool{raw.HasTable, raw.HasChart, raw.HasSearch, raw.HasPagination, raw.HasExternalLinks, raw.HasDownloader} {
		if flag == nil {
			return WidgetAnalysis{}, false
		}
	}
	return WidgetAnalysis{
		UIComponents:       nonNil(raw.UIComponents),
		HasTable:           *raw.HasTable,
		HasChart:           *raw.HasChart,
		HasSearch:          *raw.HasSearch,
		HasPagination:      *raw.HasPagination,
		HasExternalLinks:   *raw.HasExternalLinks,
		HasDownloader:      *raw.HasDownloader,
		CustomInteractions: nonNil(raw.CustomInteractions),
		ExistingTestIDs:    nonNil(raw.ExistingTestIDs),
		SuggestedTestIDs:   nonNilSuggestions(raw.SuggestedTestIDs),
		Reasoning:          raw.Reasoning,
	}, true
}

// FallbackWidgetAnalysis derives the feature flags by keyword matching over
// the unit's concatenated sources.
func FallbackWidgetAnalysis(u detect.Unit) WidgetAnalysis {
	text := joinSources(u.Sources)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
	return WidgetAnalysis{
		UIComponents:       []string{},
		HasTable:           has("OtTable", "<Table"),
		HasChart:           has("Chart", "Plot"),
		HasSearch:          has("showGlobalFilter", "Search"),
		HasPagination:      has("pagination"),
		HasExternalLinks:   has("Link external"),
		HasDownloader:      has("dataDownloader"),
		CustomInteractions: []string{},
		ExistingTestIDs:    []string{},
		SuggestedTestIDs:   []SuggestedTestID{},
		Reasoning:          FallbackReasoning,
		Fallback:           true,
	}
}

// PageAnalysis describes a page's navigation and header structure.
// Every field is always populated; lists are never nil.
type PageAnalysis struct {
	Components       []string     `json:"components"`
	HasTabs          bool         `json:"hasTabs"`
	Tabs             []detect.Tab `json:"tabs"`
	HasExternalLinks bool         `json:"hasExternalLinks"`
	HasQuery         bool         `json:"hasQuery"`
	URLParams        []string     `json:"urlParams"`
	HeaderElements   []string     `json:"headerElements"`
	RoutePattern     string       `json:"routePattern"`
	EntityType       string       `json:"entityType"`
	ExistingTestIDs  []string     `json:"existingTestIds"`
	Reasoning        string       `json:"reasoning"`
	Fallback         bool         `json:"-"`
}

type rawPageAnalysis struct {
	Components       []string     `json:"components"`
	HasTabs          *bool        `json:"hasTabs"`
	Tabs             []detect.Tab `json:"tabs"`
	HasExternalLinks *bool        `json:"hasExternalLinks"`
	HasQuery         *bool        `json:"hasQuery"`
	URLParams        []string     `json:"urlParams"`
	HeaderElements   []string     `json:"headerElements"`
	RoutePattern     string       `json:"routePattern"`
	EntityType       string       `json:"entityType"`
	ExistingTestIDs  []string     `json:"existingTestIds"`
	Reasoning        string       `json:"reasoning"`
}

// ParsePageAnalysis validates a model reply for page u. Missing route and
// entity are taken from the unit.
func ParsePageAnalysis(reply string, u detect.Unit) (PageAnalysis, bool) {
	var raw rawPageAnalysis
	if !llm.ExtractJSON(reply, &raw) || raw.HasTabs == nil || raw.HasExternalLinks == nil || raw.HasQuery == nil {
		return PageAnalysis{}, false
	}
	a := PageAnalysis{
		Components:       nonNil(raw.Components),
		HasTabs:          *raw.HasTabs,
		Tabs:             raw.Tabs,
		HasExternalLinks: *raw.HasExternalLinks,
		HasQuery:         *raw.HasQuery,
		URLParams:        nonNil(raw.URLParams),
		HeaderElements:   nonNil(raw.HeaderElements),
		RoutePattern:     raw.RoutePattern,
		EntityType:       raw.EntityType,
		ExistingTestIDs:  nonNil(raw.ExistingTestIDs),
		Reasoning:        raw.Reasoning,
	}
	if a.Tabs == nil {
		a.Tabs = []detect.Tab{}
	}
	if a.RoutePattern == "" {
		a.RoutePattern = u.Route
	}
	if a.EntityType == "" {
		a.EntityType = u.Category
	}
	return a, true
}

// FallbackPageAnalysis is used when the page analysis reply is unusable.
func FallbackPageAnalysis(u detect.Unit) PageAnalysis {
	text := joinSources(u.Sources)
	tabs := u.Tabs
	if tabs == nil {
		tabs = []detect.Tab{}
	}
	return PageAnalysis{
		Components:       []string{},
		HasTabs:          len(tabs) > 1,
		Tabs:             tabs,
		HasExternalLinks: strings.Contains(text, "external"),
		HasQuery:         strings.Contains(text, "useQuery"),
		URLParams:        []string{},
		HeaderElements:   []string{},
		RoutePattern:     u.Route,
		EntityType:       u.Category,
		ExistingTestIDs:  []string{},
		Reasoning:        FallbackReasoning,
		Fallback:         true,
	}
}

func joinSources(files []detect.SourceFile) string {
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Code)
	}
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSuggestions(s []SuggestedTestID) []SuggestedTestID {
	if s == nil {
		return []SuggestedTestID{}
	}
	return s
}

// mergeStrings appends the values of extra missing from base.
func mergeStrings(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range extra {
		if !seen[v] {
			seen[v] = true
			base = append(base, v)
		}
	}
	return base
}
