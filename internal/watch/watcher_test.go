package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFor reads changes until match returns true or the timeout expires.
func waitFor(t *testing.T, ch <-chan Change, match func(Change) bool) Change {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			require.True(t, ok, "change channel closed unexpectedly")
			if match(c) {
				return c
			}
		case <-timeout:
			t.Fatal("timeout waiting for change")
		}
	}
}

func TestWatcherFsnotify(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Retarget(tempDir))
	require.NoError(t, w.Start())
	defer w.Stop()

	assert.Equal(t, tempDir, w.Directory())

	time.Sleep(100 * time.Millisecond)

	// Create
	path := filepath.Join(tempDir, "a.png")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	c := waitFor(t, w.Changes(), func(c Change) bool { return c.Path == path && c.Op.Has(fsnotify.Create) })
	assert.Equal(t, Listing, c.Kind)

	// Write
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	c = waitFor(t, w.Changes(), func(c Change) bool { return c.Path == path && c.Kind == Content })
	assert.True(t, c.Op.Has(fsnotify.Write))

	// Remove
	require.NoError(t, os.Remove(path))
	c = waitFor(t, w.Changes(), func(c Change) bool { return c.Path == path && c.Op.Has(fsnotify.Remove) })
	assert.Equal(t, Listing, c.Kind)
}

func TestWatcherRetarget(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Retarget(first))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, w.Retarget(second))
	assert.Equal(t, second, w.Directory())
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(first, "old.png"), nil, 0644))
	want := filepath.Join(second, "new.png")
	require.NoError(t, os.WriteFile(want, nil, 0644))

	c := waitFor(t, w.Changes(), func(c Change) bool { return true })
	assert.Equal(t, want, c.Path, "events from the previous directory must be ignored")
}

func TestWatcherRetargetErrors(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Retarget(filepath.Join(t.TempDir(), "missing")))

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, w.Retarget(file))
	assert.Empty(t, w.Directory())
}

func TestWatcherStop(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Retarget(t.TempDir()))
	require.NoError(t, w.Start())
	assert.Error(t, w.Start(), "second start must fail")

	w.Stop()

	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok, "change channel should be closed after stop")
	case <-time.After(time.Second):
		t.Error("timeout waiting for change channel to close after stop")
	}

	// Idempotent
	w.Stop()
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "listing", Listing.String())
	assert.Equal(t, "content", Content.String())
}
