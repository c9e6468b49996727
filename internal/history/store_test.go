package history

import (
	"path/filepath"
	"testing"

	"imgview/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberRecall(t *testing.T) {
	s, err := Open("", InMemory())
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Recall("/photos/a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Remember("/photos/a", "img2.png"))
	require.NoError(t, s.Remember("/photos/a/", "img3.png"))

	name, ok, err := s.Recall("/photos/a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "img3.png", name, "paths are cleaned before use as keys")

	require.NoError(t, s.Remember("/photos/b", "x.jpg"))
	dirs, err := s.Directories()
	require.NoError(t, err)
	assert.Equal(t, []string{"/photos/a", "/photos/b"}, dirs)

	require.NoError(t, s.Forget("/photos/a"))
	_, ok, err = s.Recall("/photos/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Remember("/comics/vol1", "003.png"))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	name, ok, err := s.Recall("/comics/vol1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "003.png", name)
}

func TestClosedStore(t *testing.T) {
	s, err := Open("", InMemory())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Remember("/a", "b")
	require.Error(t, err)
	assert.Equal(t, errors.HistoryFailed, errors.KindOf(err))
}
