package statestore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/arkankau/coffee-chatted/db"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]KV {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	fileKV, err := Open(ctx, Config{Driver: DriverFile, Dir: filepath.Join(dir, "store")})
	require.NoError(t, err)

	sqliteKV, err := Open(ctx, Config{
		Driver:     DriverSQLite,
		SQLite:     db.DefaultConfig(),
		SQLitePath: filepath.Join(dir, "state.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = fileKV.Close()
		_ = sqliteKV.Close()
	})
	return map[string]KV{"file": fileKV, "sqlite": sqliteKV}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Put(ctx, "alpha", []byte(`{"a":1}`)))
			require.NoError(t, kv.Put(ctx, "beta", []byte(`{"b":2}`)))
			require.NoError(t, kv.Put(ctx, "alpha", []byte(`{"a":3}`)))

			got, err := kv.Get(ctx, "alpha")
			require.NoError(t, err)
			require.JSONEq(t, `{"a":3}`, string(got))

			keys, err := kv.Keys(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"alpha", "beta"}, keys)

			require.NoError(t, kv.Delete(ctx, "alpha"))
			require.NoError(t, kv.Delete(ctx, "alpha"))
			_, err = kv.Get(ctx, "alpha")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestKVUpdate(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := kv.Update(ctx, "counter", func(current []byte, found bool) ([]byte, error) {
				require.False(t, found)
				require.Nil(t, current)
				return []byte("1"), nil
			})
			require.NoError(t, err)

			boom := errors.New("boom")
			err = kv.Update(ctx, "counter", func(current []byte, found bool) ([]byte, error) {
				require.True(t, found)
				require.Equal(t, "1", string(current))
				return nil, boom
			})
			require.ErrorIs(t, err, boom)

			got, err := kv.Get(ctx, "counter")
			require.NoError(t, err)
			require.Equal(t, "1", string(got), "aborted update must not write")
		})
	}
}

func TestKVUpdateSerializesWriters(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			const writers = 8
			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- kv.Update(ctx, "list", func(current []byte, found bool) ([]byte, error) {
						return append(current, 'x'), nil
					})
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}
			got, err := kv.Get(ctx, "list")
			require.NoError(t, err)
			require.Len(t, got, writers)
		})
	}
}

func TestKVRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "Upper", "../escape", "a/b", "dot.key"} {
				_, err := kv.Get(ctx, key)
				require.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "redis"})
	require.Error(t, err)
}
