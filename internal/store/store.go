// Package store defines the key-value persistence the journal writes its document to.
package store

import (
	"context"
	"errors"

	"github.com/tartampluch/go-together/internal/config"
)

// ErrNotFound is returned by Load when the key has never been saved.
var ErrNotFound = errors.New(config.ErrNotFound)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New(config.ErrStoreClosed)

// Store persists opaque blobs under string keys.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
