package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reclaimit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalImageStore {
	t.Helper()
	store, err := NewLocalImageStore(&config.Config{
		UploadDir:     t.TempDir(),
		PublicBaseURL: "http://localhost:5000",
	})
	require.NoError(t, err)
	return store
}

func TestLocalImageStore_SaveAndRemove(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save("wallet-photo.JPG", []byte("fake image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	// The stored name is random, never the uploaded one.
	assert.NotContains(t, url, "wallet-photo")

	name := filepath.Base(url)
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	require.NoError(t, err)

	require.NoError(t, store.Remove(url))
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalImageStore_RejectsBadUploads(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("notes.txt", []byte("hello"))
	assert.Error(t, err)

	_, err = store.Save("empty.png", nil)
	assert.Error(t, err)
}

func TestLocalImageStore_RemoveForeignURL(t *testing.T) {
	store := newTestStore(t)
	// URLs outside our namespace are ignored.
	assert.NoError(t, store.Remove("https://elsewhere.example/pic.jpg"))
}
