package cmd

import (
	"fmt"
	"strings"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/generate"
)

func renderDetection(r detect.Result) {
	prettyLog.Header(fmt.Sprintf("Detected %d widget(s) and %d page(s) from %d added file(s)",
		len(r.Widgets), len(r.Pages), len(r.AddedFiles)))

	for _, u := range r.Widgets {
		prettyLog.Path("  widget ", u.Label())
		prettyLog.Dim(fmt.Sprintf("    section id %s, sources: %s", u.SectionID(), strings.Join(u.SourceNames(), ", ")))
	}
	for _, u := range r.Pages {
		prettyLog.Path("  page   ", u.Label())
		if u.Route != "" {
			prettyLog.Dim("    route " + u.Route)
		}
		for _, tab := range u.Tabs {
			prettyLog.Dim(fmt.Sprintf("    tab %s %s", tab.Name, tab.Route))
		}
	}
	if len(r.Widgets)+len(r.Pages) == 0 {
		prettyLog.InfoPretty("Nothing to generate")
	}
}

func renderReport(r generate.Report, dryRun bool) {
	prettyLog.Blank()
	for _, w := range r.Widgets {
		if !w.Success {
			prettyLog.ErrorPretty(fmt.Sprintf("%s/%s: %s", w.Entity, w.Widget, w.Error))
			continue
		}
		msg := fmt.Sprintf("%s/%s", w.Entity, w.Widget)
		if w.TestHooks != nil && w.TestHooks.Applied > 0 {
			msg += fmt.Sprintf(" (%d data-testid added)", w.TestHooks.Applied)
		}
		prettyLog.Success(msg)
		prettyLog.Path("    ", w.InteractorPath)
		prettyLog.Path("    ", w.TestPath)
	}
	for _, p := range r.Pages {
		if !p.Success {
			prettyLog.ErrorPretty(fmt.Sprintf("%s: %s", p.Page, p.Error))
			continue
		}
		prettyLog.Success(p.Page)
		prettyLog.Path("    ", p.InteractorPath)
		prettyLog.Path("    ", p.TestPath)
	}

	total := len(r.Widgets) + len(r.Pages)
	prettyLog.Blank()
	summary := fmt.Sprintf("%d of %d unit(s) generated", total-r.Failed(), total)
	if dryRun {
		summary += " (dry run, nothing written)"
	}
	if r.Failed() > 0 {
		prettyLog.WarnPretty(summary)
	} else {
		prettyLog.InfoPretty(summary)
	}
}
