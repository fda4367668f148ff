// Package storagetest holds the behavioural checks every storage.KV
// implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/architect/internal/storage"
)

// RunKVContract exercises get/set/delete semantics against kv, which must be
// empty and ready for use.
func RunKVContract(t *testing.T, kv storage.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		_, err := kv.Get(ctx, "missing")
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("empty value is not missing", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "empty", ""))
		v, err := kv.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, "", v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "k", "one"))
		require.NoError(t, kv.Set(ctx, "k", "two"))
		v, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", v)
	})

	t.Run("delete removes and is idempotent", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "gone", `{"a":1}`))
		require.NoError(t, kv.Delete(ctx, "gone"))
		_, err := kv.Get(ctx, "gone")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		assert.NoError(t, kv.Delete(ctx, "gone"))
	})

	t.Run("unicode round trip", func(t *testing.T) {
		val := `[{"text":"café ✦ — naïve"}]`
		require.NoError(t, kv.Set(ctx, "architect_entries", val))
		v, err := kv.Get(ctx, "architect_entries")
		require.NoError(t, err)
		assert.Equal(t, val, v)
	})
}
