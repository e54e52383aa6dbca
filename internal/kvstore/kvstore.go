package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// Store is a durable key-value store holding serialized collections under
// fixed names. Writes are full overwrites of the stored value; there is no
// partial-update path and no transactionality across keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
