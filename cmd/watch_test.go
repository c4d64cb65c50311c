package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-testgen/pkg/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchUnits_ReportsNewWidgetOnce(t *testing.T) {
	ws := t.TempDir()
	sections := filepath.Join(ws, "packages", "sections", "src", "target")
	require.NoError(t, os.MkdirAll(sections, 0755))

	out := &syncBuffer{}
	saved := prettyLog.w
	prettyLog.w = out
	t.Cleanup(func() { prettyLog.w = saved })

	cfg := config.DefaultConfig()
	cfg.Paths.Workspace = ws

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchUnits(ctx, cfg, nil) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop")
		}
	})

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching ")
	}, 5*time.Second, 20*time.Millisecond)

	// Foo is created after the watch started, so it is only seen once the
	// watcher picks up the new directory. Rewriting the entry file keeps
	// producing events until that happens; the poll interval outlasts the
	// debounce so each write gets a detection pass.
	widget := filepath.Join(sections, "Foo")
	require.NoError(t, os.MkdirAll(widget, 0755))
	entry := filepath.Join(widget, "index.ts")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(entry, []byte(`export const definition = { id: "foo", name: "Foo" };`), 0644)
		return strings.Contains(out.String(), "target/Foo")
	}, 10*time.Second, watchDebounce+250*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(widget, "Body.tsx"), []byte("export default function Body() { return null; }"), 0644))
	require.NoError(t, os.WriteFile(entry, []byte(`export const definition = { id: "foo" };`), 0644))
	time.Sleep(3 * watchDebounce)

	assert.Equal(t, 1, strings.Count(out.String(), "target/Foo"), out.String())
}
