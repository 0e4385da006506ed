package songsync

import (
	"encoding/base64"

	"github.com/tendant/simple-song-sync/pkg/songsync/tags"
)

// Normalize reshapes a raw tag set into the library schema. Only the first
// artist, album artist and picture are kept; the picture list itself never
// reaches the output.
func Normalize(raw *tags.Tags, lyrics string) NormalizedMetadata {
	md := NormalizedMetadata{
		Title:       raw.Title,
		Artist:      first(raw.Artist),
		AlbumArtist: first(raw.AlbumArtist),
		Album:       raw.Album,
		Year:        raw.Year,
		Track:       raw.Track.No,
		Disk:        raw.Disk,
		Genre:       raw.Genre,
		Duration:    raw.Duration,
		Lyrics:      lyrics,
	}
	if md.Genre == nil {
		md.Genre = []string{}
	}
	if len(raw.Picture) > 0 {
		pic := raw.Picture[0]
		md.Cover = &Cover{
			Extension: pic.Format,
			Data:      base64.StdEncoding.EncodeToString(pic.Data),
		}
	}
	return md
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
