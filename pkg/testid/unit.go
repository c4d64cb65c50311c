package testid

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/imports"
	"github.com/mattsolo1/grove-testgen/pkg/syntax"
)

// PrimaryFiles are always tagged; a parse failure in one aborts the unit.
var PrimaryFiles = []string{"Body", "Summary"}

// SkippedFiles are never tagged.
var SkippedFiles = []string{"index", "Description"}

// FileResult is the tagging outcome for one source file of a unit.
type FileResult struct {
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Applied     int          `json:"applied"`
	Modified    bool         `json:"modified"`
	Written     bool         `json:"written"`
}

// UnitResult aggregates a unit's tagging outcome. Unit carries the rewritten
// sources whether or not they were written to disk.
type UnitResult struct {
	Unit             detect.Unit  `json:"-"`
	Files            []FileResult `json:"files"`
	TotalApplied     int          `json:"totalApplied"`
	TotalSuggestions int          `json:"totalSuggestions"`
}

// ModifiedFiles lists the paths of files that received hooks.
func (r UnitResult) ModifiedFiles() []string {
	var paths []string
	for _, f := range r.Files {
		if f.Modified {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Processor tags the sources of a unit.
type Processor struct {
	// DryRun leaves files on disk untouched.
	DryRun bool
	log    *logrus.Entry
}

// NewProcessor creates a Processor. A nil log discards everything below Warn.
func NewProcessor(dryRun bool, log *logrus.Entry) *Processor {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}
	return &Processor{DryRun: dryRun, log: log}
}

// IsSecondary reports whether a source key names an imported local component.
func IsSecondary(name string) bool {
	return !contains(PrimaryFiles, name) && !contains(SkippedFiles, name) && !strings.HasSuffix(name, detect.QueryExtension)
}

// UnitTargets aggregates UI imports across all of a unit's source files.
// Files that fail to parse contribute nothing.
func UnitTargets(ctx context.Context, u detect.Unit) Targets {
	var agg imports.Buckets
	for _, f := range u.Sources {
		if strings.HasSuffix(f.Name, detect.QueryExtension) {
			continue
		}
		b := imports.Analyze(ctx, f.Code)
		agg.UI = append(agg.UI, b.UI...)
	}
	return TargetsFromImports(agg)
}

// ProcessUnit tags the unit's primary files, then its secondary files. The
// returned unit holds the rewritten code. Secondary files that fail to parse
// are skipped, and appear in the result only when they yield suggestions.
// Repeat numbering runs across all of the unit's files.
func (p *Processor) ProcessUnit(ctx context.Context, u detect.Unit) (UnitResult, error) {
	sectionID := u.SectionID()
	targets := UnitTargets(ctx, u)
	res := UnitResult{Unit: u}
	counts := Occurrences{}

	p.log.WithFields(logrus.Fields{
		"unit":    u.Name,
		"section": sectionID,
		"targets": strings.Join(targets.Names(), ","),
	}).Debug("Tagging unit sources")

	for _, name := range PrimaryFiles {
		f, ok := u.Source(name)
		if !ok || f.Code == "" || f.Path == "" {
			continue
		}
		fr, code, err := p.processFile(ctx, f, sectionID, targets, counts)
		if err != nil {
			return res, fmt.Errorf("tagging %s: %w", f.Path, err)
		}
		res.add(fr, code)
	}

	for _, f := range u.Sources {
		if !IsSecondary(f.Name) || f.Code == "" || f.Path == "" {
			continue
		}
		fr, code, err := p.processFile(ctx, f, sectionID, targets, counts)
		if errors.Is(err, syntax.ErrParse) {
			p.log.WithFields(logrus.Fields{"file": f.Path, "error": err}).Debug("Skipping unparseable component")
			continue
		}
		if err != nil {
			return res, fmt.Errorf("tagging %s: %w", f.Path, err)
		}
		if len(fr.Suggestions) == 0 {
			continue
		}
		res.add(fr, code)
	}
	return res, nil
}

func (r *UnitResult) add(fr FileResult, code string) {
	r.Files = append(r.Files, fr)
	r.TotalApplied += fr.Applied
	r.TotalSuggestions += len(fr.Suggestions)
	if fr.Modified {
		r.Unit = r.Unit.WithSource(fr.Name, code)
	}
}

func (p *Processor) processFile(ctx context.Context, f detect.SourceFile, sectionID string, targets Targets, counts Occurrences) (FileResult, string, error) {
	out, err := ApplyCounted(ctx, f.Code, sectionID, targets, counts)
	if err != nil {
		return FileResult{}, "", err
	}

	fr := FileResult{
		Name:        f.Name,
		Path:        f.Path,
		Suggestions: out.Suggestions,
		Applied:     out.Applied,
		Modified:    out.Modified,
	}
	for _, s := range out.Suggestions {
		p.log.WithFields(logrus.Fields{
			"file":    f.Path,
			"element": s.Element,
			"line":    s.Line,
			"testid":  s.TestID,
		}).Debug("Planned test id")
	}

	if out.Modified && !p.DryRun {
		if err := os.WriteFile(f.Path, []byte(out.Code), 0644); err != nil {
			return FileResult{}, "", fmt.Errorf("writing %s: %w", f.Path, err)
		}
		fr.Written = true
	}
	return fr, out.Code, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
