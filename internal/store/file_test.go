package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almnar0/almeshkat25/internal/store"
)

type doc struct {
	ID string `json:"id"`
	N  int    `json:"n"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	st, err := store.OpenFile(t.TempDir())
	require.NoError(t, err)

	in := []doc{{ID: "a", N: 1}, {ID: "b", N: 2}}
	require.NoError(t, st.Write(store.Tickets, in))

	var out []doc
	require.NoError(t, st.Read(store.Tickets, &out))
	assert.Equal(t, in, out)
}

func TestFileStoreMissingCollectionIsEmpty(t *testing.T) {
	st, err := store.OpenFile(t.TempDir())
	require.NoError(t, err)

	out := []doc{{ID: "stale"}}
	require.NoError(t, st.Read("never_written", &out))
	assert.Empty(t, out)
}

func TestFileStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := store.OpenFile(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStoreWriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	st, err := store.OpenFile(dir)
	require.NoError(t, err)

	require.NoError(t, st.Write(store.Users, []doc{{ID: "a"}}))
	require.NoError(t, st.Write(store.Users, []doc{{ID: "b"}, {ID: "c"}}))

	var out []doc
	require.NoError(t, st.Read(store.Users, &out))
	require.Len(t, out, 2)

	// No temp files left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	// The on-disk file is standalone valid JSON.
	b, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(b))
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	st, err := store.OpenFile(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "devices.json"), []byte("{not json"), 0o644))

	var out []doc
	assert.Error(t, st.Read(store.Devices, &out))
}

func TestFileStoreLockSerializesWriters(t *testing.T) {
	st, err := store.OpenFile(t.TempDir())
	require.NoError(t, err)

	// Classic lost-update check: concurrent read-modify-write under the
	// collection lock must not drop increments.
	const workers, rounds = 8, 10
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				unlock := st.Lock(store.Notifications)
				var items []doc
				if err := st.Read(store.Notifications, &items); err != nil {
					unlock()
					t.Error(err)
					return
				}
				items = append(items, doc{N: len(items)})
				if err := st.Write(store.Notifications, items); err != nil {
					unlock()
					t.Error(err)
					return
				}
				unlock()
			}
		}()
	}
	wg.Wait()

	var items []doc
	require.NoError(t, st.Read(store.Notifications, &items))
	assert.Len(t, items, workers*rounds)
}
