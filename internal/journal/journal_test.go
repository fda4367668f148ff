package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/storage"
	"github.com/julianstephens/architect/internal/streak"
)

var errDiskFull = errors.New("disk full")

// flakyKV fails every Set while failing is true.
type flakyKV struct {
	storage.KV
	mu      sync.Mutex
	failing bool
}

func (f *flakyKV) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errDiskFull
	}
	return f.KV.Set(ctx, key, value)
}

func fixedClock(t *testing.T, now time.Time) *streak.Calculator {
	t.Helper()
	calc := streak.New(time.UTC, constants.LocaleDateFormat)
	calc.Now = func() time.Time { return now }
	return calc
}

func newTestBook(t *testing.T, now time.Time) (*Book, *flakyKV) {
	t.Helper()
	kv := &flakyKV{KV: storage.NewMemoryStore()}
	book := NewBook(storage.NewRepository(kv), fixedClock(t, now), constants.LocaleDateFormat)
	_, err := book.Load(context.Background())
	require.NoError(t, err)
	return book, kv
}
