package storage

import "context"

// BlobStorage is a durable byte-object store addressed by opaque keys.
// Implementations must be safe for concurrent use. Keys are never reused,
// so writers cannot race on the same key.
type BlobStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
