package songsync

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnknownMediaType indicates an object key without an extension
	ErrUnknownMediaType = errors.New("unknown media type")

	// ErrUnsupportedMediaType indicates an extension outside mp3, m4a and ogg
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrUnsupportedEventType indicates an event that is neither a creation nor a removal
	ErrUnsupportedEventType = errors.New("unsupported event type")

	// ErrInvalidObjectKey indicates a key that cannot be percent-decoded
	ErrInvalidObjectKey = errors.New("invalid object key")

	// ErrNoRecords indicates a notification envelope without records
	ErrNoRecords = errors.New("notification contains no records")

	// ErrObjectNotFound indicates the object is missing from storage
	ErrObjectNotFound = errors.New("object not found")

	// ErrTagParse indicates the object's metadata could not be read
	ErrTagParse = errors.New("failed to parse tags")

	// ErrTransport indicates the library request failed
	ErrTransport = errors.New("library request failed")
)

// MediaTypeError reports a key whose extension is missing or unsupported.
// NoExtension is set only when the key contains no '.'; a trailing dot
// yields an unsupported, empty Extension.
type MediaTypeError struct {
	Key         string
	Extension   string
	NoExtension bool
}

func (e *MediaTypeError) Error() string {
	if e.NoExtension {
		return fmt.Sprintf("%v: %q has no extension", ErrUnknownMediaType, e.Key)
	}
	return fmt.Sprintf("%v: %q (%s)", ErrUnsupportedMediaType, e.Extension, e.Key)
}

func (e *MediaTypeError) Unwrap() error {
	if e.NoExtension {
		return ErrUnknownMediaType
	}
	return ErrUnsupportedMediaType
}

// EventTypeError reports an event name that is neither ObjectCreated nor ObjectRemoved.
type EventTypeError struct {
	EventName string
}

func (e *EventTypeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnsupportedEventType, e.EventName)
}

func (e *EventTypeError) Unwrap() error {
	return ErrUnsupportedEventType
}

// FetchError represents a failure to download an object from storage
type FetchError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch s3://%s/%s failed: %v", e.Bucket, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// TagParseError represents a failure to read metadata from an object
type TagParseError struct {
	Key string
	Err error
}

func (e *TagParseError) Error() string {
	return fmt.Sprintf("%v for %s: %v", ErrTagParse, e.Key, e.Err)
}

func (e *TagParseError) Unwrap() []error {
	return []error{ErrTagParse, e.Err}
}

// TransportError represents a failed or rejected library request
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("library %s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("library %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}
