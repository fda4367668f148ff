// Package storage defines the key-value persistence contract and the typed
// repository used for journal records.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no value is stored under the key.
	// It is distinct from a stored empty value.
	ErrNotFound = errors.New("key not found")
	// ErrNotInitialized is returned by Load when the backing store does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized, run 'architect init' first")
)

// KV is the minimal get/set/delete store. Deleting a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Provider interface {
	KV

	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Keys lists every stored key, sorted.
	Keys(ctx context.Context) ([]string, error)

	// Utils
	GetConfigPath() string
}
