package testid

import (
	"fmt"

	"github.com/mattsolo1/grove-testgen/pkg/syntax"
)

// Suggestion is one planned test-hook insertion.
type Suggestion struct {
	Element string `json:"element"`
	TestID  string `json:"testId"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`

	el *syntax.Element
}

// Occurrences counts planned hooks per element name.
type Occurrences map[string]int

// Plan walks the tree in document order and proposes a hook for every
// targeted element that lacks one. Repeats of a tag within the file get a
// "-k" suffix from the second match on.
func Plan(tree *syntax.Tree, sectionID string, targets Targets) []Suggestion {
	return PlanCounted(tree, sectionID, targets, Occurrences{})
}

// PlanCounted is Plan with numbering continued from counts, which it
// updates. Sharing counts across the files of a unit keeps the unit's hook
// values distinct.
func PlanCounted(tree *syntax.Tree, sectionID string, targets Targets, counts Occurrences) []Suggestion {
	var out []Suggestion

	for _, el := range tree.Elements() {
		name, ok := el.Name()
		if !ok {
			continue
		}
		target, ok := targets.Lookup(name)
		if !ok || el.HasTestHook() || !passesGuards(el, target) {
			continue
		}

		counts[name]++
		value := target.Value(sectionID)
		if n := counts[name]; n > 1 {
			value = fmt.Sprintf("%s-%d", value, n)
		}

		line, col := el.Position()
		out = append(out, Suggestion{Element: name, TestID: value, Line: line, Column: col, el: el})
	}
	return out
}

func passesGuards(el *syntax.Element, t Target) bool {
	if t.OnlyExternal && !el.HasAttribute("external") {
		return false
	}
	if t.SkipUnlessSpecial && !el.HasAttribute("className") && !el.HasAttribute("role") {
		return false
	}
	return true
}
