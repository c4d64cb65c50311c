// Package generate turns detected units into Playwright interactors and
// tests by way of an LLM.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/llm"
	"github.com/mattsolo1/grove-testgen/pkg/testid"
)

// ErrNoCodeBlock is returned when a generation reply is empty.
var ErrNoCodeBlock = errors.New("reply contains no code")

// Test-hook injection methods reported in results.
const (
	MethodAST  = "ast"
	MethodNone = "none"
)

// DefaultAnalysisMaxTokens caps analysis replies, which are small JSON documents.
const DefaultAnalysisMaxTokens = 2048

// Options configures an Orchestrator.
type Options struct {
	Workspace         string
	Layout            detect.ArtifactLayout
	UIRoots           detect.UIRoots
	FixturesPath      string
	Model             string
	MaxTokens         int
	AnalysisMaxTokens int
	DryRun            bool
	SkipTestHooks     bool
}

// AnalysisSummary is the part of a widget analysis kept in results.
type AnalysisSummary struct {
	HasTable           bool     `json:"hasTable"`
	HasChart           bool     `json:"hasChart"`
	HasSearch          bool     `json:"hasSearch"`
	HasPagination      bool     `json:"hasPagination"`
	CustomInteractions []string `json:"customInteractions"`
	Fallback           bool     `json:"fallback,omitempty"`
}

// TestHookSummary reports the test-hook injection step.
type TestHookSummary struct {
	Applied       int      `json:"applied"`
	Failed        int      `json:"failed"`
	ModifiedFiles []string `json:"modifiedFiles"`
	Method        string   `json:"method"`
}

// Result is the terminal record for one widget.
type Result struct {
	Widget         string           `json:"widget"`
	Entity         string           `json:"entity"`
	Success        bool             `json:"success"`
	Error          string           `json:"error,omitempty"`
	Analysis       *AnalysisSummary `json:"analysis,omitempty"`
	TestHooks      *TestHookSummary `json:"dataTestIds,omitempty"`
	InteractorPath string           `json:"interactorPath,omitempty"`
	TestPath       string           `json:"testPath,omitempty"`
}

// PageAnalysisSummary is the part of a page analysis kept in results.
type PageAnalysisSummary struct {
	HasTabs          bool         `json:"hasTabs"`
	Tabs             []detect.Tab `json:"tabs"`
	HasExternalLinks bool         `json:"hasExternalLinks"`
	URLParams        []string     `json:"urlParams"`
	Fallback         bool         `json:"fallback,omitempty"`
}

// PageResult is the terminal record for one page.
type PageResult struct {
	Page           string               `json:"page"`
	Success        bool                 `json:"success"`
	Error          string               `json:"error,omitempty"`
	Analysis       *PageAnalysisSummary `json:"analysis,omitempty"`
	InteractorPath string               `json:"interactorPath,omitempty"`
	TestPath       string               `json:"testPath,omitempty"`
}

// Report collects the results of a batch.
type Report struct {
	Widgets []Result     `json:"widgets"`
	Pages   []PageResult `json:"pages"`
}

// Failed counts unsuccessful units.
func (r Report) Failed() int {
	n := 0
	for _, w := range r.Widgets {
		if !w.Success {
			n++
		}
	}
	for _, p := range r.Pages {
		if !p.Success {
			n++
		}
	}
	return n
}

// Orchestrator runs the generation pipeline for one unit at a time.
type Orchestrator struct {
	client llm.Client
	opts   Options
	writer ArtifactWriter
	hooks  *testid.Processor
	log    *logrus.Entry
}

// NewOrchestrator creates an Orchestrator. A nil log discards everything below Warn.
func NewOrchestrator(client llm.Client, opts Options, log *logrus.Entry) *Orchestrator {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}
	if opts.AnalysisMaxTokens == 0 {
		opts.AnalysisMaxTokens = DefaultAnalysisMaxTokens
	}
	return &Orchestrator{
		client: client,
		opts:   opts,
		writer: ArtifactWriter{Workspace: opts.Workspace, Layout: opts.Layout, DryRun: opts.DryRun},
		hooks:  testid.NewProcessor(opts.DryRun, log),
		log:    log,
	}
}

// RunBatch processes units in order. A failing unit never stops the batch.
func (o *Orchestrator) RunBatch(ctx context.Context, units []detect.Unit) Report {
	report := Report{Widgets: []Result{}, Pages: []PageResult{}}
	for _, u := range units {
		if u.Kind == detect.KindPage {
			report.Pages = append(report.Pages, o.GeneratePage(ctx, u))
			continue
		}
		report.Widgets = append(report.Widgets, o.GenerateWidget(ctx, u))
	}
	return report
}

// GenerateWidget runs analyze, inject test hooks, load examples, generate
// interactor, generate test and write for a widget. Any step error ends the
// pipeline and is reported in the result.
func (o *Orchestrator) GenerateWidget(ctx context.Context, u detect.Unit) Result {
	log := o.log.WithFields(logrus.Fields{"widget": u.Name, "entity": u.Category})
	res := Result{Widget: u.Name, Entity: u.Category}

	if err := o.generateWidget(ctx, u, &res, log); err != nil {
		log.WithError(err).Warn("Widget generation failed")
		res.Success = false
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

func (o *Orchestrator) generateWidget(ctx context.Context, u detect.Unit, res *Result, log *logrus.Entry) error {
	analysis, err := o.AnalyzeWidget(ctx, u)
	if err != nil {
		return fmt.Errorf("analyzing widget: %w", err)
	}
	res.Analysis = &AnalysisSummary{
		HasTable:           analysis.HasTable,
		HasChart:           analysis.HasChart,
		HasSearch:          analysis.HasSearch,
		HasPagination:      analysis.HasPagination,
		CustomInteractions: analysis.CustomInteractions,
		Fallback:           analysis.Fallback,
	}
	log.WithFields(logrus.Fields{
		"table":    analysis.HasTable,
		"chart":    analysis.HasChart,
		"fallback": analysis.Fallback,
	}).Info("Analyzed widget")

	u, res.TestHooks, err = o.injectTestHooks(ctx, u)
	if err != nil {
		return fmt.Errorf("adding data-testids: %w", err)
	}
	analysis = withSourceFacts(ctx, analysis, u)
	if res.TestHooks.Applied > 0 {
		log.WithField("applied", res.TestHooks.Applied).Info("Added data-testids")
	}

	examples := LoadExamples(o.opts.Workspace, o.opts.Layout, o.opts.FixturesPath)

	interactor, err := o.generateCode(ctx, interactorSystemPrompt, interactorPrompt(u, analysis, examples))
	if err != nil {
		return fmt.Errorf("generating interactor: %w", err)
	}
	test, err := o.generateCode(ctx, testSystemPrompt, testPrompt(u, analysis, interactor, examples))
	if err != nil {
		return fmt.Errorf("generating test: %w", err)
	}

	paths, err := o.writer.Write(u, interactor, test)
	if err != nil {
		return err
	}
	res.InteractorPath, res.TestPath = paths.Interactor, paths.Test
	log.WithFields(logrus.Fields{"interactor": paths.Interactor, "test": paths.Test, "dry_run": o.opts.DryRun}).Info("Wrote artifacts")
	return nil
}

// AnalyzeWidget asks the model which features the widget renders. A reply
// that does not validate yields the keyword fallback; only a failed call
// is an error.
func (o *Orchestrator) AnalyzeWidget(ctx context.Context, u detect.Unit) (WidgetAnalysis, error) {
	uiSources := detect.ReadUIComponentSources(o.opts.Workspace, o.opts.UIRoots, u.Sources)
	reply, err := o.client.Generate(ctx, llm.Request{
		System:    analysisSystemPrompt,
		Prompt:    widgetAnalysisPrompt(u, uiSources),
		Model:     o.opts.Model,
		MaxTokens: o.opts.AnalysisMaxTokens,
	})
	if err != nil {
		return WidgetAnalysis{}, err
	}
	if a, ok := ParseWidgetAnalysis(reply); ok {
		return a, nil
	}
	o.log.WithField("widget", u.Name).Debug("Unusable analysis reply, using keyword fallback")
	return FallbackWidgetAnalysis(u), nil
}

func (o *Orchestrator) injectTestHooks(ctx context.Context, u detect.Unit) (detect.Unit, *TestHookSummary, error) {
	if o.opts.SkipTestHooks {
		return u, &TestHookSummary{ModifiedFiles: []string{}, Method: MethodNone}, nil
	}
	out, err := o.hooks.ProcessUnit(ctx, u)
	if err != nil {
		return u, nil, err
	}
	modified := out.ModifiedFiles()
	if modified == nil {
		modified = []string{}
	}
	return out.Unit, &TestHookSummary{
		Applied:       out.TotalApplied,
		Failed:        out.TotalSuggestions - out.TotalApplied,
		ModifiedFiles: modified,
		Method:        MethodAST,
	}, nil
}

// withSourceFacts adds the test ids and component names present in the
// unit's sources. Files that fail to parse are ignored.
func withSourceFacts(ctx context.Context, a WidgetAnalysis, u detect.Unit) WidgetAnalysis {
	for _, f := range u.Sources {
		ids, err := testid.ExistingTestIDs(ctx, f.Code)
		if err != nil {
			continue
		}
		a.ExistingTestIDs = mergeStrings(a.ExistingTestIDs, ids)
		if names, err := testid.ComponentNames(ctx, f.Code); err == nil {
			a.UIComponents = mergeStrings(a.UIComponents, names)
		}
	}
	return a
}

func (o *Orchestrator) generateCode(ctx context.Context, system, prompt string) (string, error) {
	reply, err := o.client.Generate(ctx, llm.Request{
		System:    system,
		Prompt:    prompt,
		Model:     o.opts.Model,
		MaxTokens: o.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	code := llm.ExtractCodeBlock(reply, "typescript", "ts", "tsx", "")
	if code == "" {
		return "", ErrNoCodeBlock
	}
	return code, nil
}

// GeneratePage runs analyze, load examples, generate interactor, generate
// test and write for a page.
func (o *Orchestrator) GeneratePage(ctx context.Context, u detect.Unit) PageResult {
	log := o.log.WithFields(logrus.Fields{"page": u.Name, "entity": u.Category})
	res := PageResult{Page: u.Name}

	if err := o.generatePage(ctx, u, &res, log); err != nil {
		log.WithError(err).Warn("Page generation failed")
		res.Success = false
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

func (o *Orchestrator) generatePage(ctx context.Context, u detect.Unit, res *PageResult, log *logrus.Entry) error {
	analysis, err := o.AnalyzePage(ctx, u)
	if err != nil {
		return fmt.Errorf("analyzing page: %w", err)
	}
	res.Analysis = &PageAnalysisSummary{
		HasTabs:          analysis.HasTabs,
		Tabs:             analysis.Tabs,
		HasExternalLinks: analysis.HasExternalLinks,
		URLParams:        analysis.URLParams,
		Fallback:         analysis.Fallback,
	}
	log.WithFields(logrus.Fields{
		"tabs":           len(analysis.Tabs),
		"external_links": analysis.HasExternalLinks,
		"fallback":       analysis.Fallback,
	}).Info("Analyzed page")

	examples := LoadPageExamples(o.opts.Workspace, o.opts.Layout)

	interactor, err := o.generateCode(ctx, pageInteractorSystemPrompt, pageInteractorPrompt(u, analysis, examples))
	if err != nil {
		return fmt.Errorf("generating interactor: %w", err)
	}
	test, err := o.generateCode(ctx, pageTestSystemPrompt, pageTestPrompt(u, analysis, interactor, examples))
	if err != nil {
		return fmt.Errorf("generating test: %w", err)
	}

	paths, err := o.writer.Write(u, interactor, test)
	if err != nil {
		return err
	}
	res.InteractorPath, res.TestPath = paths.Interactor, paths.Test
	log.WithFields(logrus.Fields{"interactor": paths.Interactor, "test": paths.Test, "dry_run": o.opts.DryRun}).Info("Wrote artifacts")
	return nil
}

// AnalyzePage asks the model for the page's navigation structure, falling
// back to what detection found when the reply does not validate.
func (o *Orchestrator) AnalyzePage(ctx context.Context, u detect.Unit) (PageAnalysis, error) {
	reply, err := o.client.Generate(ctx, llm.Request{
		System:    pageAnalysisSystemPrompt,
		Prompt:    pageAnalysisPrompt(u),
		Model:     o.opts.Model,
		MaxTokens: o.opts.AnalysisMaxTokens,
	})
	if err != nil {
		return PageAnalysis{}, err
	}
	a, ok := ParsePageAnalysis(reply, u)
	if !ok {
		o.log.WithField("page", u.Name).Debug("Unusable page analysis reply, using fallback")
		a = FallbackPageAnalysis(u)
	}
	for _, f := range u.Sources {
		if ids, err := testid.ExistingTestIDs(ctx, f.Code); err == nil {
			a.ExistingTestIDs = mergeStrings(a.ExistingTestIDs, ids)
		}
	}
	return a, nil
}
