package gitdiff

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNameStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FileChanges
	}{
		{
			name:  "all statuses",
			input: "A\tsrc/new.tsx\nM\tsrc/changed.ts\nD\tsrc/gone.ts\nR087\tsrc/old.ts\tsrc/moved.ts\n",
			expected: FileChanges{
				Added:    []string{"src/new.tsx"},
				Modified: []string{"src/changed.ts"},
				Deleted:  []string{"src/gone.ts"},
				Renamed:  []string{"src/moved.ts"},
			},
		},
		{
			name:     "blank lines and unknown statuses",
			input:    "\nA\ta.ts\n\nT\tb.ts\nnot-a-record\n",
			expected: FileChanges{Added: []string{"a.ts"}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: FileChanges{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNameStatus([]byte(tt.input)))
		})
	}
}

func TestChangedFiles_ToleratesGitFailure(t *testing.T) {
	r := NewReader(t.TempDir(), nil)
	r.run = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		return nil, errors.New("fatal: not a git repository")
	}

	changes := r.ChangedFiles(context.Background(), "main")
	assert.True(t, changes.Empty())
	assert.False(t, r.IsRepository(context.Background()))
}

func TestChangedFiles_DefaultsBaseRef(t *testing.T) {
	var gotArgs []string
	r := NewReader(t.TempDir(), nil)
	r.run = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("A\tx.ts\n"), nil
	}

	changes := r.ChangedFiles(context.Background(), "")
	assert.Equal(t, []string{"diff", "--name-status", "main...HEAD"}, gotArgs)
	assert.Equal(t, []string{"x.ts"}, changes.Added)
}

func TestGitIntegration(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	git := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	git("init", "-b", "main")
	git("config", "user.email", "test@example.com")
	git("config", "user.name", "Test User")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.ts"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.ts"), []byte("b"), 0644))
	git("add", ".")
	git("commit", "-m", "base")

	git("checkout", "-b", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.ts"), []byte("changed"), 0644))
	require.NoError(t, os.Remove(filepath.Join(dir, "drop.ts")))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "new.tsx"), []byte("c"), 0644))
	git("add", "-A")
	git("commit", "-m", "feature")

	r := NewReader(dir, nil)
	ctx := context.Background()
	require.True(t, r.IsRepository(ctx))

	branch, err := r.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)

	changes := r.ChangedFiles(ctx, "main")
	assert.Equal(t, []string{"src/new.tsx"}, changes.Added)
	assert.Equal(t, []string{"keep.ts"}, changes.Modified)
	assert.Equal(t, []string{"drop.ts"}, changes.Deleted)
}
