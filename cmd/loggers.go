package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

var (
	log       = newLogger(os.Stderr)
	prettyLog = newPrettyLogger(os.Stdout)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// setVerbose lowers the structured log level to Debug.
func setVerbose(v bool) {
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

func logEntry(component string) *logrus.Entry {
	return log.WithField("component", component)
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// prettyLogger writes human-readable progress for the terminal.
type prettyLogger struct {
	w io.Writer
}

func newPrettyLogger(w io.Writer) *prettyLogger {
	return &prettyLogger{w: w}
}

func (p *prettyLogger) println(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *prettyLogger) Header(msg string)      { p.println(headerStyle.Render(msg)) }
func (p *prettyLogger) InfoPretty(msg string)  { p.println(infoStyle.Render(msg)) }
func (p *prettyLogger) Success(msg string)     { p.println(successStyle.Render("✓ " + msg)) }
func (p *prettyLogger) WarnPretty(msg string)  { p.println(warnStyle.Render("! " + msg)) }
func (p *prettyLogger) ErrorPretty(msg string) { p.println(errorStyle.Render("✗ " + msg)) }
func (p *prettyLogger) Dim(msg string)         { p.println(dimStyle.Render(msg)) }
func (p *prettyLogger) Blank()                 { p.println("") }

// Path prints a label followed by a highlighted path.
func (p *prettyLogger) Path(label, path string) {
	p.println(label + pathStyle.Render(path))
}
