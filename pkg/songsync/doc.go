// Package songsync keeps a remote media library in sync with an audio bucket.
//
// A storage notification is reduced to a NotificationRecord, classified by
// media type and event kind, and then either ingested (the object is fetched
// into a scoped temporary file, its tags are read and normalized, and the
// result is POSTed to the library) or removed (a DELETE is sent to the
// library). Exactly one record is handled per invocation and at most one
// library request is made.
//
// Storage backends (S3, filesystem, memory), the library client, metrics and
// the webhook API live in subpackages and are wired together by the config
// package.
package songsync
