package songsync

import (
	"context"
	"io"
	"time"
)

// ObjectStore downloads objects from a bucket.
type ObjectStore interface {
	// Fetch writes the object into w starting at offset 0 and returns the
	// number of bytes written. Missing objects yield ErrObjectNotFound.
	Fetch(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error)
}

// Extractor reads and normalizes the metadata of a staged object.
type Extractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64, key string) (*NormalizedMetadata, error)
}

// Notifier performs the library requests.
type Notifier interface {
	Upsert(ctx context.Context, req LibraryRequest) error
	Remove(ctx context.Context, req LibraryRequest) error
}

// EventSink observes handler activity. Implementations must not block.
type EventSink interface {
	EventHandled(ctx context.Context, record NotificationRecord, outcome Outcome)
	NotifyCompleted(ctx context.Context, method string, elapsed time.Duration, err error)
}
