package songsync

import (
	"context"
	"io"

	"github.com/tendant/simple-song-sync/pkg/songsync/tags"
)

// TagExtractor is the default Extractor. It reads tags with duration and
// collects unsynchronised lyrics from the frame side channel; when a file
// carries several lyric frames the last one wins.
type TagExtractor struct{}

// NewTagExtractor creates the default extractor
func NewTagExtractor() *TagExtractor {
	return &TagExtractor{}
}

// Extract parses the staged object. Any parse failure is returned as a
// *TagParseError.
func (e *TagExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64, key string) (*NormalizedMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lyrics string
	raw, err := tags.Parse(r, size, key,
		tags.WithDuration(),
		tags.WithFrameHandler(func(f tags.Frame) {
			if f.Kind == tags.KindLyrics {
				lyrics = f.Text
			}
		}),
	)
	if err != nil {
		return nil, &TagParseError{Key: key, Err: err}
	}

	md := Normalize(raw, lyrics)
	return &md, nil
}
