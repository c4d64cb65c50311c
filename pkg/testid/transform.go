package testid

import (
	"context"

	"github.com/mattsolo1/grove-testgen/pkg/imports"
	"github.com/mattsolo1/grove-testgen/pkg/syntax"
)

// Result is the outcome of tagging one file.
type Result struct {
	Code        string       `json:"-"`
	Suggestions []Suggestion `json:"suggestions"`
	Applied     int          `json:"applied"`
	Modified    bool         `json:"modified"`
}

// Apply tags the elements of code that Plan selects. A nil targets map
// derives policies from the file's own imports. The returned code is the
// input verbatim unless at least one hook was inserted.
func Apply(ctx context.Context, code, sectionID string, targets Targets) (Result, error) {
	return ApplyCounted(ctx, code, sectionID, targets, Occurrences{})
}

// ApplyCounted is Apply with repeat numbering continued from counts.
func ApplyCounted(ctx context.Context, code, sectionID string, targets Targets, counts Occurrences) (Result, error) {
	tree, err := syntax.Parse(ctx, code)
	if err != nil {
		return Result{}, err
	}
	defer tree.Close()

	if targets == nil {
		targets = TargetsFromImports(imports.Categorize(imports.FromTree(tree)))
	}

	res := Result{Code: code, Suggestions: PlanCounted(tree, sectionID, targets, counts)}
	for _, s := range res.Suggestions {
		if s.el.AddTestHook(s.TestID) {
			res.Applied++
		}
	}
	if res.Applied > 0 {
		res.Code = tree.Print()
		res.Modified = true
	}
	return res, nil
}

// ExistingTestIDs returns the literal data-testid values already in code.
func ExistingTestIDs(ctx context.Context, code string) ([]string, error) {
	tree, err := syntax.Parse(ctx, code)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return tree.TestHookValues(), nil
}

// ComponentNames returns the distinct JSX tag names used in code.
func ComponentNames(ctx context.Context, code string) ([]string, error) {
	tree, err := syntax.Parse(ctx, code)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return tree.ComponentNames(), nil
}
