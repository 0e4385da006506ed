package tags

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"strconv"
	"strings"
)

// readVorbisComments reads a comment block:
// [vendor length][vendor][count]{[length][KEY=value]}.
func (p *parser) readVorbisComments(b []byte) error {
	if len(b) < 8 {
		return p.corrupted(0, "truncated comment header")
	}
	vendorLen := int(binary.LittleEndian.Uint32(b))
	if 4+vendorLen+4 > len(b) {
		return p.corrupted(0, "vendor string length %d exceeds header", vendorLen)
	}
	pos := 4 + vendorLen
	count := int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4

	for i := 0; i < count; i++ {
		if pos+4 > len(b) {
			return p.corrupted(0, "comment %d truncated", i)
		}
		n := int(binary.LittleEndian.Uint32(b[pos:]))
		pos += 4
		if n < 0 || pos+n > len(b) {
			return p.corrupted(0, "comment %d length %d exceeds header", i, n)
		}
		key, value, ok := strings.Cut(string(b[pos:pos+n]), "=")
		pos += n
		if ok {
			p.vorbisComment(strings.ToUpper(key), value)
		}
	}
	return nil
}

func (p *parser) vorbisComment(key, value string) {
	t := p.tags
	trimmed := strings.TrimSpace(value)

	switch key {
	case "TITLE":
		t.Title = trimmed
	case "ARTIST":
		t.Artist = appendNonEmpty(t.Artist, trimmed)
	case "ALBUMARTIST", "ALBUM ARTIST":
		t.AlbumArtist = appendNonEmpty(t.AlbumArtist, trimmed)
	case "ALBUM":
		t.Album = trimmed
	case "DATE", "YEAR":
		t.Year = parseYear(trimmed)
	case "GENRE":
		t.Genre = appendNonEmpty(t.Genre, trimmed)
	case "TRACKNUMBER":
		pos := parsePosition(trimmed)
		t.Track.No = pos.No
		if pos.Of != 0 {
			t.Track.Of = pos.Of
		}
	case "TRACKTOTAL", "TOTALTRACKS":
		t.Track.Of, _ = strconv.Atoi(trimmed)
	case "DISCNUMBER":
		pos := parsePosition(trimmed)
		t.Disk.No = pos.No
		if pos.Of != 0 {
			t.Disk.Of = pos.Of
		}
	case "DISCTOTAL", "TOTALDISCS":
		t.Disk.Of, _ = strconv.Atoi(trimmed)
	case "LYRICS", "UNSYNCEDLYRICS":
		p.emit(Frame{ID: key, Kind: KindLyrics, Text: value})
	case "COMMENT", "DESCRIPTION":
		p.emit(Frame{ID: key, Kind: KindComment, Text: value})
	case "METADATA_BLOCK_PICTURE":
		if pic, ok := parsePictureBlock(trimmed); ok {
			t.Picture = append(t.Picture, pic)
		}
	case "COVERART":
		if data, err := base64.StdEncoding.DecodeString(trimmed); err == nil && len(data) > 0 {
			t.Picture = append(t.Picture, Picture{Format: sniffImage(data), Data: data})
		}
	}
}

// parsePictureBlock decodes a base64 FLAC picture block:
// [type][mime len][mime][desc len][desc][w][h][depth][colors][data len][data],
// all lengths big-endian uint32.
func parsePictureBlock(encoded string) (Picture, bool) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Picture{}, false
	}
	r := bytes.NewReader(b)
	readU32 := func() (uint32, bool) {
		var v uint32
		return v, binary.Read(r, binary.BigEndian, &v) == nil
	}
	readBytes := func(n uint32) ([]byte, bool) {
		if int64(n) > int64(r.Len()) {
			return nil, false
		}
		out := make([]byte, n)
		_, err := r.Read(out)
		return out, err == nil || n == 0
	}

	if _, ok := readU32(); !ok {
		return Picture{}, false
	}
	mimeLen, ok := readU32()
	if !ok {
		return Picture{}, false
	}
	mime, ok := readBytes(mimeLen)
	if !ok {
		return Picture{}, false
	}
	descLen, ok := readU32()
	if !ok {
		return Picture{}, false
	}
	if _, ok := readBytes(descLen); !ok {
		return Picture{}, false
	}
	for i := 0; i < 4; i++ {
		if _, ok := readU32(); !ok {
			return Picture{}, false
		}
	}
	dataLen, ok := readU32()
	if !ok {
		return Picture{}, false
	}
	data, ok := readBytes(dataLen)
	if !ok || len(data) == 0 {
		return Picture{}, false
	}
	return Picture{Format: pictureFormat(string(mime), data), Data: data}, true
}

func appendNonEmpty(dst []string, s string) []string {
	if s == "" {
		return dst
	}
	return append(dst, s)
}
