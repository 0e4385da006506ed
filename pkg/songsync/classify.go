package songsync

import (
	"fmt"
	"net/url"
	"strings"
)

// SupportedExtensions lists the media types the library accepts. Matching is
// case-sensitive.
var SupportedExtensions = map[string]bool{
	"mp3": true,
	"m4a": true,
	"ogg": true,
}

// DecodeKey turns a notification key into the object key: '+' becomes a
// space, then percent escapes are decoded. "foo%2Bbar+baz.mp3" decodes to
// "foo+bar baz.mp3".
func DecodeKey(raw string) (string, error) {
	key, err := url.PathUnescape(strings.ReplaceAll(raw, "+", " "))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidObjectKey, raw, err)
	}
	return key, nil
}

// MediaType returns the extension of key if it is supported.
func MediaType(key string) (string, error) {
	idx := strings.LastIndexByte(key, '.')
	if idx < 0 {
		return "", &MediaTypeError{Key: key, NoExtension: true}
	}
	ext := key[idx+1:]
	if !SupportedExtensions[ext] {
		return "", &MediaTypeError{Key: key, Extension: ext}
	}
	return ext, nil
}

// ClassifyEventName maps an event name to its kind. Names may carry the
// "s3:" prefix used by MinIO.
func ClassifyEventName(name string) EventKind {
	n := strings.TrimPrefix(name, "s3:")
	switch {
	case strings.HasPrefix(n, "ObjectCreated:"):
		return EventCreated
	case strings.HasPrefix(n, "ObjectRemoved:"):
		return EventRemoved
	default:
		return EventOther
	}
}

// NewRecord builds a NotificationRecord from the raw notification fields.
func NewRecord(eventName, bucket, rawKey string) (NotificationRecord, error) {
	key, err := DecodeKey(rawKey)
	if err != nil {
		return NotificationRecord{}, err
	}
	return NotificationRecord{
		Kind:      ClassifyEventName(eventName),
		EventName: eventName,
		Bucket:    bucket,
		Key:       key,
	}, nil
}

// Classify checks the media type first and the event kind second. Either
// failure is terminal for the record.
func Classify(rec NotificationRecord) error {
	if _, err := MediaType(rec.Key); err != nil {
		return err
	}
	if rec.Kind != EventCreated && rec.Kind != EventRemoved {
		return &EventTypeError{EventName: rec.EventName}
	}
	return nil
}
