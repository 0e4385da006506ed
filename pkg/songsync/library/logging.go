package library

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// LoggingNotifier logs the requests it would send instead of sending them.
type LoggingNotifier struct {
	logger *slog.Logger
	appKey string
}

// NewLoggingNotifier creates a dry-run notifier
func NewLoggingNotifier(logger *slog.Logger, appKey string) *LoggingNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingNotifier{logger: logger, appKey: appKey}
}

// Upsert logs the ingest form
func (n *LoggingNotifier) Upsert(ctx context.Context, req songsync.LibraryRequest) error {
	form, err := UpsertForm(n.appKey, req)
	if err != nil {
		return err
	}
	form.Set("appKey", redact(n.appKey))
	if data := form.Get(coverDataField); data != "" {
		form.Set(coverDataField, fmt.Sprintf("<%d base64 chars>", len(data)))
	}
	n.logger.InfoContext(ctx, "Dry run: library request",
		"method", http.MethodPost,
		"path", SongPath,
		"fields", len(form),
		"body", form.Encode(),
	)
	return nil
}

// Remove logs the removal form
func (n *LoggingNotifier) Remove(ctx context.Context, req songsync.LibraryRequest) error {
	form := RemoveForm(redact(n.appKey), req)
	n.logger.InfoContext(ctx, "Dry run: library request",
		"method", http.MethodDelete,
		"path", SongPath,
		"body", form.Encode(),
	)
	return nil
}

const coverDataField = "tags[cover][data]"

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
