package controller

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imgview/internal/config"
	"imgview/internal/display"
	"imgview/internal/errors"
	"imgview/internal/history"
	"imgview/internal/listing"
	"imgview/internal/pathseq"
	"imgview/internal/prefetch"
	"imgview/internal/treewalk"
	"imgview/pkg/testutils"
	"imgview/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Cache.Workers = 2
	cfg.Navigation.Watch = false
	return cfg
}

func open(t *testing.T, path string, opts ...Option) *Controller {
	t.Helper()
	c, err := Open(path, testConfig(), display.NewFileDecoder(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func current(c *Controller) string {
	return c.Sequence().Current()
}

func TestOpenFile(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png", "a/3.png")

	c := open(t, filepath.Join(root, "a", "2.png"))
	assert.Equal(t, filepath.Join(root, "a", "2.png"), current(c))
	assert.Equal(t, root, c.Root())
	assert.Equal(t, 3, c.Sequence().Size())
}

func TestOpenDirectory(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/b.png", "a/A.png", "a/notes.md")

	c := open(t, filepath.Join(root, "a"))
	assert.Equal(t, filepath.Join(root, "a", "A.png"), current(c))
	assert.Equal(t, 2, c.Sequence().Size())
}

func TestOpenErrors(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/readme.md", "empty/sub/")
	cfg := testConfig()
	dec := display.NewFileDecoder()

	_, err := Open(filepath.Join(root, "missing"), cfg, dec)
	assert.True(t, errors.IsFileNotFound(err))

	_, err = Open(filepath.Join(root, "a", "readme.md"), cfg, dec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")

	_, err = Open(filepath.Join(root, "empty"), cfg, dec)
	assert.True(t, errors.Is(err, errors.ErrNoDisplayableEntries))
}

func TestOpenDirectoryWithoutDisplayables(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "top/a/sub/", "top/b/z.png")

	c := open(t, filepath.Join(root, "top", "a"))
	assert.Equal(t, filepath.Join(root, "top", "b", "z.png"), current(c))
	assert.Equal(t, filepath.Join(root, "top"), c.Root())

	testutils.CreateTree(t, root, "top/c/sub/deep.png", "top/c/readme.md")
	c2 := open(t, filepath.Join(root, "top", "c"))
	assert.Equal(t, filepath.Join(root, "top", "c", "sub", "deep.png"), current(c2))
}

func TestOpenRecallsHistory(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png", "a/3.png")
	dir := filepath.Join(root, "a")
	storePath := filepath.Join(t.TempDir(), "history")

	store, err := history.Open(storePath)
	require.NoError(t, err)
	c, err := Open(dir, testConfig(), display.NewFileDecoder(), WithHistory(store))
	require.NoError(t, err)
	require.NoError(t, c.Do(types.NextPage, ""))
	require.NoError(t, c.Do(types.NextPage, ""))
	require.NoError(t, c.Close())

	store, err = history.Open(storePath)
	require.NoError(t, err)
	c = open(t, dir, WithHistory(store))
	assert.Equal(t, filepath.Join(dir, "3.png"), current(c))
}

func TestNextPrevPage(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png", "a/3.png")
	c := open(t, filepath.Join(root, "a", "1.png"))

	require.NoError(t, c.Do(types.PrevPage, ""))
	assert.Equal(t, filepath.Join(root, "a", "1.png"), current(c), "first entry stays put")

	require.NoError(t, c.Do(types.NextPage, ""))
	require.NoError(t, c.Do(types.NextPage, ""))
	assert.Equal(t, filepath.Join(root, "a", "3.png"), current(c))

	require.NoError(t, c.Do(types.NextPage, ""))
	assert.Equal(t, filepath.Join(root, "a", "3.png"), current(c), "last entry stays put")

	require.NoError(t, c.Do(types.PrevPage, ""))
	assert.Equal(t, filepath.Join(root, "a", "2.png"), current(c))
}

func TestNextPagePicksUpNewFiles(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png")
	c := open(t, filepath.Join(root, "a", "2.png"))

	testutils.CreateTree(t, root, "a/3.png")
	require.NoError(t, c.Do(types.NextPage, ""))
	assert.Equal(t, filepath.Join(root, "a", "3.png"), current(c))
	assert.Equal(t, 3, c.Sequence().Size())
}

func TestNextPageSkipsDeletedNeighbour(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png", "a/3.png")
	c := open(t, filepath.Join(root, "a", "1.png"))

	require.NoError(t, os.Remove(filepath.Join(root, "a", "2.png")))
	require.NoError(t, c.Do(types.NextPage, ""))
	assert.Equal(t, filepath.Join(root, "a", "3.png"), current(c))
	assert.Equal(t, 2, c.Sequence().Size())
}

func TestDeletedCurrentScenario(t *testing.T) {
	for _, action := range []types.Action{types.RefreshFiles, types.NextPage, types.PrevPage} {
		t.Run(action.String(), func(t *testing.T) {
			root := t.TempDir()
			testutils.CreateTree(t, root, "a/x.png", "a/y.png")
			c := open(t, filepath.Join(root, "a", "x.png"))
			y := filepath.Join(root, "a", "y.png")

			require.NoError(t, os.Remove(filepath.Join(root, "a", "x.png")))
			require.NoError(t, c.Do(action, ""))
			assert.Equal(t, y, current(c))

			require.Eventually(t, func() bool {
				state, ok := c.Engine().Snapshot()[y]
				return ok && state == prefetch.Decoded
			}, 3*time.Second, 10*time.Millisecond, "cache re-centres on y.png")
		})
	}
}

func TestNextPrevWork(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root,
		"top/a/1.png", "top/a/2.png",
		"top/a/sub/3.png",
		"top/b/4.png",
		"top/c/",
	)
	c := open(t, filepath.Join(root, "top", "a", "2.png"))

	require.NoError(t, c.Do(types.NextWork, ""))
	assert.Equal(t, filepath.Join(root, "top", "a", "sub", "3.png"), current(c))

	require.NoError(t, c.Do(types.NextWork, ""))
	assert.Equal(t, filepath.Join(root, "top", "b", "4.png"), current(c))

	require.NoError(t, c.Do(types.NextWork, ""))
	assert.Equal(t, filepath.Join(root, "top", "b", "4.png"), current(c), "no viewable directory after b")

	require.NoError(t, c.Do(types.PrevWork, ""))
	assert.Equal(t, filepath.Join(root, "top", "a", "1.png"), current(c), "a new directory opens on its first entry")
}

func TestNextWorkFromDirectoryWithoutDisplayables(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "top/a/sub/", "top/b/z.png")
	top := filepath.Join(root, "top")

	l, err := listing.New()
	require.NoError(t, err)
	cfg := testConfig()
	c := newController(pathseq.New(filepath.Join(top, "a"), nil, 0), top, treewalk.New(l), display.NewFileDecoder(), cfg)
	c.start()
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Do(types.NextWork, ""))
	assert.Equal(t, filepath.Join(top, "b", "z.png"), current(c))
}

func TestFatalEndsSession(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/x.png")
	c := open(t, filepath.Join(root, "a", "x.png"))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "a")))
	err := c.Do(types.NextPage, "")
	assert.ErrorIs(t, err, errors.ErrNavigationExhausted)

	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed")
	}
	assert.ErrorIs(t, c.Err(), errors.ErrNavigationExhausted)
	assert.ErrorIs(t, c.Do(types.NextPage, ""), errors.ErrControllerUnavailable)
}

func TestQuit(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/x.png")
	c := open(t, filepath.Join(root, "a"))

	assert.NoError(t, c.Err())
	require.NoError(t, c.Do(types.QuitApp, ""))
	<-c.Done()
	assert.NoError(t, c.Err())
	assert.NoError(t, c.Close())
}

func TestPageSelect(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png", "a/3.png", "a/4.png")
	c := open(t, filepath.Join(root, "a"))

	require.NoError(t, c.Do(types.PageSelectOn, ""))
	require.NoError(t, c.Do(types.PageSelectNum, "3"))
	require.NoError(t, c.Do(types.PageSelectNum, "9"))
	require.NoError(t, c.Do(types.PageSelectNum, "x"))
	st := c.Status()
	assert.True(t, st.PageSelect)
	assert.Equal(t, "Page: 39", st.PageLine())

	require.NoError(t, c.Do(types.PageSelectNumDel, ""))
	require.NoError(t, c.Do(types.PageSelectApply, ""))
	assert.Equal(t, filepath.Join(root, "a", "3.png"), current(c))
	assert.False(t, c.Status().PageSelect)

	require.NoError(t, c.Do(types.PageSelectOn, ""))
	assert.Empty(t, c.Status().PageBuffer, "opening the prompt clears the buffer")
	require.NoError(t, c.Do(types.PageSelectNum, "0"))
	err := c.Do(types.PageSelectApply, "")
	assert.True(t, errors.IsInvalidInputError(err))
	assert.Equal(t, filepath.Join(root, "a", "3.png"), current(c))

	require.NoError(t, c.Do(types.PageSelectOn, ""))
	require.NoError(t, c.Do(types.PageSelectNum, "5"))
	assert.Error(t, c.Do(types.PageSelectApply, ""), "page past the end")

	require.NoError(t, c.Do(types.PageSelectOn, ""))
	require.NoError(t, c.Do(types.PageSelectOff, ""))
	assert.False(t, c.Status().PageSelect)
}

func TestPageSelectSeesFreshListing(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png")
	c := open(t, filepath.Join(root, "a"))

	testutils.CreateTree(t, root, "a/3.png")
	require.NoError(t, c.Do(types.PageSelectOn, ""))
	require.NoError(t, c.Do(types.PageSelectNum, "3"))
	require.NoError(t, c.Do(types.PageSelectApply, ""))
	assert.Equal(t, filepath.Join(root, "a", "3.png"), current(c))
}

func TestRefreshKeepsCurrent(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/b.png", "a/c.png")
	c := open(t, filepath.Join(root, "a", "c.png"))

	testutils.CreateTree(t, root, "a/a.png")
	require.NoError(t, c.Do(types.RefreshFiles, ""))
	assert.Equal(t, filepath.Join(root, "a", "c.png"), current(c))
	assert.Equal(t, 3, c.Status().Index)
}

func TestStatusInfo(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "top/a/1.png", "top/a/2.png")
	c := open(t, filepath.Join(root, "top", "a", "2.png"))

	st := c.Status()
	assert.Equal(t, types.InfoShort, st.Info)
	assert.Equal(t, "[2/2]"+filepath.Join("a", "2.png"), st.InfoLine)

	require.NoError(t, c.Do(types.ToggleShowInfo, ""))
	st = c.Status()
	assert.Equal(t, types.InfoLong, st.Info)
	assert.Equal(t, "[2/2]"+filepath.Join("a", "2.png"), st.InfoLine, "long form is relative to the root")

	require.NoError(t, c.Do(types.ToggleShowInfo, ""))
	assert.Empty(t, c.Status().InfoLine)
}

func TestFrameEventuallyDecoded(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png", "a/broken.png")
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "broken.png"), []byte("nope"), 0644))
	c := open(t, filepath.Join(root, "a"))

	require.Eventually(t, func() bool { return !c.Frame().Loading }, 3*time.Second, 10*time.Millisecond)
	f := c.Frame()
	require.NotNil(t, f.Shown)
	assert.Equal(t, display.KindImage, f.Shown.Kind)

	require.NoError(t, c.Do(types.NextPage, ""))
	require.NoError(t, c.Do(types.NextPage, ""))
	require.Eventually(t, func() bool { return !c.Frame().Loading }, 3*time.Second, 10*time.Millisecond)
	f = c.Frame()
	assert.Equal(t, prefetch.Failed, f.Slot.State)
	assert.Equal(t, display.KindMessage, f.Shown.Kind)
}

func TestRedrawRequested(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png")
	c := open(t, filepath.Join(root, "a"))

	select {
	case <-c.Redraw():
	case <-time.After(3 * time.Second):
		t.Fatal("no redraw after open")
	}
	require.NoError(t, c.Do(types.ToggleShowInfo, ""))
	select {
	case <-c.Redraw():
	case <-time.After(3 * time.Second):
		t.Fatal("no redraw after toggling info")
	}
}

func TestAutoRefresh(t *testing.T) {
	root := t.TempDir()
	testutils.CreateTree(t, root, "a/1.png", "a/2.png")
	cfg := testConfig()
	cfg.Navigation.Watch = true

	c, err := Open(filepath.Join(root, "a", "1.png"), cfg, display.NewFileDecoder())
	require.NoError(t, err)
	defer c.Close()
	time.Sleep(100 * time.Millisecond)

	testutils.CreateTree(t, root, "a/3.png")
	require.Eventually(t, func() bool { return c.Status().Size == 3 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(root, "a", "1.png")))
	require.Eventually(t, func() bool {
		return current(c) == filepath.Join(root, "a", "2.png")
	}, 3*time.Second, 20*time.Millisecond)
}
