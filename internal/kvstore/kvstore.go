// Package kvstore provides the string key-value store the form storage
// layer persists into. Every operation touches exactly one key.
package kvstore

import (
	"context"
	"errors"
)

var ErrQuotaExceeded = errors.New("storage quota exceeded")

type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value under key. A write that would exceed the store's
	// capacity fails with ErrQuotaExceeded and leaves the old value.
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
