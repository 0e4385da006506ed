package songsync_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-song-sync/pkg/songsync"
	"github.com/tendant/simple-song-sync/pkg/songsync/tags"
)

func TestNormalize(t *testing.T) {
	raw := &tags.Tags{
		Title:       "T",
		Artist:      []string{"First", "Second"},
		AlbumArtist: []string{"AA"},
		Album:       "Al",
		Year:        "2001",
		Track:       tags.Position{No: 3, Of: 12},
		Disk:        tags.Position{No: 1, Of: 2},
		Genre:       []string{"Rock", "Jazz"},
		Duration:    215.5,
		Picture: []tags.Picture{
			{Format: "png", Data: []byte("first")},
			{Format: "jpeg", Data: []byte("second")},
		},
	}

	md := songsync.Normalize(raw, "words")

	assert.Equal(t, "First", md.Artist)
	assert.Equal(t, "AA", md.AlbumArtist)
	assert.Equal(t, 3, md.Track)
	assert.Equal(t, tags.Position{No: 1, Of: 2}, md.Disk)
	assert.Equal(t, []string{"Rock", "Jazz"}, md.Genre)
	assert.Equal(t, 215.5, md.Duration)
	assert.Equal(t, "words", md.Lyrics)
	require.NotNil(t, md.Cover)
	assert.Equal(t, "png", md.Cover.Extension)

	data, err := base64.StdEncoding.DecodeString(md.Cover.Data)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)
}

func TestNormalize_EmptySequences(t *testing.T) {
	md := songsync.Normalize(&tags.Tags{Title: "T"}, "")

	assert.Equal(t, "", md.Artist)
	assert.Equal(t, "", md.AlbumArtist)
	assert.Equal(t, 0, md.Track)
	assert.Equal(t, []string{}, md.Genre)
	assert.Nil(t, md.Cover)
}

func TestNormalize_JSONShape(t *testing.T) {
	t.Run("no cover", func(t *testing.T) {
		md := songsync.Normalize(&tags.Tags{Title: "T"}, "")
		raw, err := json.Marshal(md)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.NotContains(t, fields, "cover")
		assert.NotContains(t, fields, "picture")
		assert.Equal(t, []any{}, fields["genre"])
	})

	t.Run("cover replaces pictures", func(t *testing.T) {
		md := songsync.Normalize(&tags.Tags{Picture: []tags.Picture{{Format: "jpeg", Data: coverJPEG}}}, "")
		raw, err := json.Marshal(md)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.NotContains(t, fields, "picture")
		assert.Equal(t, map[string]any{
			"extension": "jpeg",
			"data":      base64.StdEncoding.EncodeToString(coverJPEG),
		}, fields["cover"])
	})
}

func TestTagExtractor_LastLyricsWin(t *testing.T) {
	file := mp3File(
		frame("TIT2", text("Two Verses")),
		lyricsFrame("first", "one"),
		lyricsFrame("second", "two"),
	)

	md, err := songsync.NewTagExtractor().Extract(context.Background(), bytes.NewReader(file), int64(len(file)), "x.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Two Verses", md.Title)
	assert.Equal(t, "two", md.Lyrics)
}

func TestTagExtractor_ParseError(t *testing.T) {
	data := []byte("ID3\x03\x00\x00\x7f\x7f\x7f\x7f")

	_, err := songsync.NewTagExtractor().Extract(context.Background(), bytes.NewReader(data), int64(len(data)), "broken.mp3")

	var parseErr *songsync.TagParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "broken.mp3", parseErr.Key)
	assert.ErrorIs(t, err, songsync.ErrTagParse)
}
