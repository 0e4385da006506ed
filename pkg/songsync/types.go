package songsync

import (
	"github.com/tendant/simple-song-sync/pkg/songsync/tags"
)

// EventKind is the class of storage event a record represents.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventRemoved EventKind = "removed"
	EventOther   EventKind = "other"
)

// Outcome is the terminal state of one handled record.
type Outcome string

const (
	OutcomeSynced   Outcome = "synced"
	OutcomeRemoved  Outcome = "removed"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// MessageSuccess is returned for every record that reaches the library stage.
const MessageSuccess = "Successful."

// NotificationRecord is the decoded view of the first record of a storage
// notification.
type NotificationRecord struct {
	Kind      EventKind
	EventName string
	Bucket    string
	// Key is the decoded object key.
	Key string
}

// Cover is the embedded artwork sent to the library.
type Cover struct {
	Extension string `json:"extension"`
	Data      string `json:"data"`
}

// NormalizedMetadata is the tag schema the library expects.
type NormalizedMetadata struct {
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	AlbumArtist string        `json:"albumartist"`
	Album       string        `json:"album"`
	Year        string        `json:"year"`
	Track       int           `json:"track"`
	Disk        tags.Position `json:"disk"`
	Genre       []string      `json:"genre"`
	Duration    float64       `json:"duration"`
	Lyrics      string        `json:"lyrics"`
	Cover       *Cover        `json:"cover,omitempty"`
}

// LibraryRequest identifies the song a library call is about. Tags is nil for
// removals. The application key is added by the notifier.
type LibraryRequest struct {
	Bucket string
	Key    string
	Tags   *NormalizedMetadata
}
