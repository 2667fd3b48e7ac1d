package db

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_ProfileOperations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	t.Run("missing profile", func(t *testing.T) {
		_, err := store.GetProfile(ctx, "octo")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("save and get", func(t *testing.T) {
		doc := json.RawMessage(`{"headline":"Backend engineer","pinned":[42,7]}`)
		require.NoError(t, store.SaveProfile(ctx, "octo", doc))

		got, err := store.GetProfile(ctx, "octo")
		require.NoError(t, err)
		assert.JSONEq(t, string(doc), string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.SaveProfile(ctx, "octo", json.RawMessage(`{"headline":"SRE"}`)))

		got, err := store.GetProfile(ctx, "octo")
		require.NoError(t, err)
		assert.JSONEq(t, `{"headline":"SRE"}`, string(got))
	})

	t.Run("persists across instances", func(t *testing.T) {
		reopened, err := NewFileStore(dir)
		require.NoError(t, err)

		got, err := reopened.GetProfile(ctx, "octo")
		require.NoError(t, err)
		assert.JSONEq(t, `{"headline":"SRE"}`, string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteProfile(ctx, "octo"))
		_, err := store.GetProfile(ctx, "octo")
		assert.ErrorIs(t, err, ErrProfileNotFound)
		assert.ErrorIs(t, store.DeleteProfile(ctx, "octo"), ErrProfileNotFound)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, profilesFile, entries[0].Name())
	})
}

func TestFileStore_ConcurrentWrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	logins := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, login := range logins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.SaveProfile(ctx, login, json.RawMessage(`{"login":"`+login+`"}`)))
		}()
	}
	wg.Wait()

	for _, login := range logins {
		got, err := store.GetProfile(ctx, login)
		require.NoError(t, err)
		assert.JSONEq(t, `{"login":"`+login+`"}`, string(got))
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, profilesFile), []byte("{not json"), 0o644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.GetProfile(context.Background(), "octo")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProfileNotFound)
}
