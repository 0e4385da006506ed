package songsync

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// ParseEvent decodes an S3 notification envelope. MinIO webhook payloads
// carry the same Records array next to their own fields.
func ParseEvent(data []byte) (events.S3Event, error) {
	var ev events.S3Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return events.S3Event{}, fmt.Errorf("decode notification: %w", err)
	}
	return ev, nil
}

// FirstRecord decodes the first record of the envelope. Further records are
// ignored. The raw object key is decoded by DecodeKey; URLDecodedKey is not
// used.
func FirstRecord(ev events.S3Event) (NotificationRecord, error) {
	if len(ev.Records) == 0 {
		return NotificationRecord{}, ErrNoRecords
	}
	r := ev.Records[0]
	return NewRecord(r.EventName, r.S3.Bucket.Name, r.S3.Object.Key)
}
