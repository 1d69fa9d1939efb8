package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), logger.NewNop())
	require.NoError(t, err)
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(SubdirDocuments, "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "documents/notes.txt", relPath)

	abs, err := store.AbsPath(relPath)
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSaveCollisionGetsSuffix(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(SubdirDocuments, "notes.txt", []byte("one"))
	require.NoError(t, err)
	second, err := store.Save(SubdirDocuments, "notes.txt", []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, ".txt", filepath.Ext(second))

	abs, err := store.AbsPath(first)
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestSaveSanitizesName(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(SubdirDocuments, "../sneaky file?.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "documents/sneaky_file_.txt", relPath)
}

func TestRemoveMissingIsNoError(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Remove("documents/never-existed.txt"))
}

func TestAbsPathRejectsEscape(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AbsPath("../outside.txt")
	assert.Error(t, err)
}

func TestURL(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, "/media/audio/a.mp3", store.URL("audio/a.mp3"))
}
