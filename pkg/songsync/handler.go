package songsync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// Handler processes storage notifications one record at a time.
type Handler struct {
	store     ObjectStore
	notifier  Notifier
	extractor Extractor
	sink      EventSink
	logger    *slog.Logger
	tempDir   string
}

// Option represents a functional option for configuring the handler
type Option func(*Handler)

// WithObjectStore sets the storage the handler fetches objects from
func WithObjectStore(store ObjectStore) Option {
	return func(h *Handler) {
		h.store = store
	}
}

// WithNotifier sets the library notifier
func WithNotifier(n Notifier) Option {
	return func(h *Handler) {
		h.notifier = n
	}
}

// WithExtractor replaces the default tag extractor
func WithExtractor(e Extractor) Option {
	return func(h *Handler) {
		h.extractor = e
	}
}

// WithEventSink sets the event sink for the handler
func WithEventSink(sink EventSink) Option {
	return func(h *Handler) {
		h.sink = sink
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTempDir sets the directory objects are staged in. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(h *Handler) {
		h.tempDir = dir
	}
}

// New creates a handler with the given options
func New(options ...Option) (*Handler, error) {
	h := &Handler{
		extractor: NewTagExtractor(),
		sink:      NewNoopEventSink(),
		logger:    slog.Default(),
	}

	for _, option := range options {
		option(h)
	}

	if h.store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if h.notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if h.extractor == nil {
		h.extractor = NewTagExtractor()
	}
	if h.sink == nil {
		h.sink = NewNoopEventSink()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	return h, nil
}

// HandleEvent handles the first record of a notification envelope.
func (h *Handler) HandleEvent(ctx context.Context, event events.S3Event) (string, error) {
	rec, err := FirstRecord(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "Rejected notification", "err", err)
		return "", err
	}
	return h.Handle(ctx, rec)
}

// Handle classifies the record and performs the ingest or removal. It returns
// MessageSuccess once the library stage has been reached, even if the library
// request itself failed; such failures are only logged.
func (h *Handler) Handle(ctx context.Context, rec NotificationRecord) (string, error) {
	id := InvocationID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithInvocationID(ctx, id)
	}
	log := h.logger.With("invocation_id", id, "bucket", rec.Bucket, "key", rec.Key, "event", rec.EventName)

	if err := Classify(rec); err != nil {
		log.WarnContext(ctx, "Rejected record", "err", err)
		h.sink.EventHandled(ctx, rec, OutcomeRejected)
		return "", err
	}

	if rec.Kind == EventRemoved {
		return h.remove(ctx, log, rec)
	}
	return h.ingest(ctx, log, rec)
}

func (h *Handler) ingest(ctx context.Context, log *slog.Logger, rec NotificationRecord) (string, error) {
	md, err := h.extract(ctx, rec)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read object metadata", "err", err)
		h.sink.EventHandled(ctx, rec, OutcomeFailed)
		return "", err
	}

	req := LibraryRequest{Bucket: rec.Bucket, Key: rec.Key, Tags: md}
	start := time.Now()
	err = h.notifier.Upsert(ctx, req)
	h.sink.NotifyCompleted(ctx, http.MethodPost, time.Since(start), err)
	if err != nil {
		log.ErrorContext(ctx, "Library sync failed", "err", err)
	} else {
		log.InfoContext(ctx, "Synced song", "title", md.Title, "artist", md.Artist, "duration", md.Duration)
	}

	h.sink.EventHandled(ctx, rec, OutcomeSynced)
	return MessageSuccess, nil
}

// extract stages the object in a temporary file that is removed on return.
func (h *Handler) extract(ctx context.Context, rec NotificationRecord) (*NormalizedMetadata, error) {
	f, err := os.CreateTemp(h.tempDir, "songsync-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	n, err := h.store.Fetch(ctx, rec.Bucket, rec.Key, f)
	if err != nil {
		return nil, &FetchError{Bucket: rec.Bucket, Key: rec.Key, Err: err}
	}

	return h.extractor.Extract(ctx, f, n, rec.Key)
}

func (h *Handler) remove(ctx context.Context, log *slog.Logger, rec NotificationRecord) (string, error) {
	req := LibraryRequest{Bucket: rec.Bucket, Key: rec.Key}
	start := time.Now()
	err := h.notifier.Remove(ctx, req)
	h.sink.NotifyCompleted(ctx, http.MethodDelete, time.Since(start), err)
	if err != nil {
		log.ErrorContext(ctx, "Library removal failed", "err", err)
	} else {
		log.InfoContext(ctx, "Removed song")
	}

	h.sink.EventHandled(ctx, rec, OutcomeRemoved)
	return MessageSuccess, nil
}
