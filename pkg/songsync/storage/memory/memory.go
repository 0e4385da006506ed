package memory

import (
	"context"
	"io"
	"sync"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// Backend is an in-memory implementation of the songsync.ObjectStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

func objectID(bucket, key string) string {
	return bucket + "/" + key
}

// Put stores an object
func (b *Backend) Put(bucket, key string, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectID(bucket, key)] = cp
}

// Delete removes an object
func (b *Backend) Delete(bucket, key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectID(bucket, key))
}

// Fetch writes the stored object into w
func (b *Backend) Fetch(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b.mu.RLock()
	data, exists := b.objects[objectID(bucket, key)]
	b.mu.RUnlock()
	if !exists {
		return 0, songsync.ErrObjectNotFound
	}

	n, err := w.WriteAt(data, 0)
	return int64(n), err
}
