// Package gitdiff classifies files changed on the current branch relative to a base reference.
package gitdiff

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileChanges holds repository-relative paths grouped by their diff status.
type FileChanges struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Deleted  []string `json:"deleted"`
	Renamed  []string `json:"renamed"`
}

// Empty reports whether no changes were found.
func (c FileChanges) Empty() bool {
	return len(c.Added)+len(c.Modified)+len(c.Deleted)+len(c.Renamed) == 0
}

// runFunc executes git with the given arguments in dir and returns stdout.
type runFunc func(ctx context.Context, dir string, args ...string) ([]byte, error)

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Reader reads change information from the git repository rooted at workDir.
type Reader struct {
	workDir string
	log     *logrus.Entry
	run     runFunc
}

// NewReader creates a Reader for workDir. A nil logger discards output.
func NewReader(workDir string, log *logrus.Entry) *Reader {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}
	return &Reader{
		workDir: workDir,
		log:     log.WithField("component", "gitdiff"),
		run:     runGit,
	}
}

// ChangedFiles diffs HEAD against the merge base with baseRef.
// Outside a repository, or when git fails, it returns empty lists.
func (r *Reader) ChangedFiles(ctx context.Context, baseRef string) FileChanges {
	if baseRef == "" {
		baseRef = "main"
	}

	output, err := r.run(ctx, r.workDir, "diff", "--name-status", baseRef+"...HEAD")
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"base": baseRef,
			"err":  err,
		}).Debug("git diff failed; treating as no changes")
		return FileChanges{}
	}

	changes := ParseNameStatus(output)
	r.log.WithFields(logrus.Fields{
		"base":     baseRef,
		"added":    len(changes.Added),
		"modified": len(changes.Modified),
		"deleted":  len(changes.Deleted),
		"renamed":  len(changes.Renamed),
	}).Debug("Collected changed files")
	return changes
}

// IsRepository reports whether workDir is inside a git work tree.
func (r *Reader) IsRepository(ctx context.Context) bool {
	output, err := r.run(ctx, r.workDir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == "true"
}

// CurrentBranch returns the abbreviated name of HEAD.
func (r *Reader) CurrentBranch(ctx context.Context) (string, error) {
	output, err := r.run(ctx, r.workDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// ParseNameStatus parses `git diff --name-status` output. Each record is a
// status letter followed by tab-separated paths; renames and copies carry a
// similarity score (R100) and two paths, of which the new one is kept.
func ParseNameStatus(output []byte) FileChanges {
	var changes FileChanges
	scanner := bufio.NewScanner(bytes.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := strings.TrimSpace(fields[0])
		path := filepath.ToSlash(filepath.Clean(fields[len(fields)-1]))

		switch {
		case status == "A":
			changes.Added = append(changes.Added, path)
		case status == "M":
			changes.Modified = append(changes.Modified, path)
		case status == "D":
			changes.Deleted = append(changes.Deleted, path)
		case strings.HasPrefix(status, "R"):
			changes.Renamed = append(changes.Renamed, path)
		}
	}

	return changes
}
