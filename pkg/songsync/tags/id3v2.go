package tags

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// ID3v2.2 uses three character frame IDs. Only the ones we read are mapped.
var id3v22Frames = map[string]string{
	"TT2": "TIT2",
	"TP1": "TPE1",
	"TP2": "TPE2",
	"TAL": "TALB",
	"TYE": "TYER",
	"TRK": "TRCK",
	"TPA": "TPOS",
	"TCO": "TCON",
	"ULT": "USLT",
	"COM": "COMM",
	"PIC": "PIC",
}

type id3v2Header struct {
	version byte
	flags   byte
	size    uint32
}

// parseID3v2 reads an ID3v2 tag at offset 0 and returns the total tag length
// including header and footer.
func (p *parser) parseID3v2() (int64, error) {
	head, err := p.sr.bytes(0, 10, "ID3v2 header")
	if err != nil {
		return 0, err
	}
	h := id3v2Header{version: head[3], flags: head[5], size: decodeSynchsafe(head[6:10])}
	total := int64(10) + int64(h.size)
	if h.flags&0x10 != 0 {
		total += 10
	}

	if h.version < 2 || h.version > 4 {
		return 0, p.corrupted(3, "unsupported ID3v2 version 2.%d", h.version)
	}
	if 10+int64(h.size) > p.sr.size {
		return 0, p.corrupted(6, "tag size %d exceeds file size %d", h.size, p.sr.size)
	}

	body, err := p.sr.bytes(10, int(h.size), "ID3v2 tag body")
	if err != nil {
		return 0, err
	}
	if h.version < 4 && h.flags&0x80 != 0 {
		body = removeUnsync(body)
	}

	if h.flags&0x40 != 0 {
		switch h.version {
		case 2:
			// Compressed ID3v2.2 tags were never specified; skip the tag.
			return total, nil
		case 3:
			if len(body) < 4 {
				return 0, p.corrupted(10, "truncated extended header")
			}
			skip := 4 + int(binary.BigEndian.Uint32(body[:4]))
			if skip > len(body) {
				return 0, p.corrupted(10, "extended header size %d exceeds tag", skip)
			}
			body = body[skip:]
		case 4:
			if len(body) < 4 {
				return 0, p.corrupted(10, "truncated extended header")
			}
			skip := int(decodeSynchsafe(body[:4]))
			if skip > len(body) {
				return 0, p.corrupted(10, "extended header size %d exceeds tag", skip)
			}
			body = body[skip:]
		}
	}

	p.readID3v2Frames(h.version, body)
	return total, nil
}

func (p *parser) readID3v2Frames(version byte, body []byte) {
	idLen, headerLen := 4, 10
	if version == 2 {
		idLen, headerLen = 3, 6
	}

	for pos := 0; pos+headerLen <= len(body); {
		id := string(body[pos : pos+idLen])
		if !validFrameID(id) {
			break
		}

		var size int
		var flags uint16
		switch version {
		case 2:
			size = int(body[pos+3])<<16 | int(body[pos+4])<<8 | int(body[pos+5])
		case 3:
			size = int(binary.BigEndian.Uint32(body[pos+4 : pos+8]))
			flags = binary.BigEndian.Uint16(body[pos+8 : pos+10])
		case 4:
			size = int(decodeSynchsafe(body[pos+4 : pos+8]))
			flags = binary.BigEndian.Uint16(body[pos+8 : pos+10])
		}

		start := pos + headerLen
		if size < 0 || start+size > len(body) {
			break
		}
		data := body[start : start+size]
		pos = start + size

		data, ok := frameContent(version, flags, data)
		if !ok {
			continue
		}
		if version == 2 {
			mapped, known := id3v22Frames[id]
			if !known {
				continue
			}
			id = mapped
		}
		p.readID3v2Frame(id, data)
	}
}

// frameContent strips per-frame encodings. Compressed or encrypted frames are
// reported as unreadable.
func frameContent(version byte, flags uint16, data []byte) ([]byte, bool) {
	switch version {
	case 3:
		if flags&0x0080 != 0 || flags&0x0040 != 0 {
			return nil, false
		}
		if flags&0x0020 != 0 {
			if len(data) < 1 {
				return nil, false
			}
			data = data[1:]
		}
	case 4:
		if flags&0x0008 != 0 || flags&0x0004 != 0 {
			return nil, false
		}
		if flags&0x0040 != 0 {
			if len(data) < 1 {
				return nil, false
			}
			data = data[1:]
		}
		if flags&0x0001 != 0 {
			if len(data) < 4 {
				return nil, false
			}
			data = data[4:]
		}
		if flags&0x0002 != 0 {
			data = removeUnsync(data)
		}
	}
	return data, true
}

func (p *parser) readID3v2Frame(id string, data []byte) {
	if len(data) == 0 {
		return
	}
	t := p.tags

	switch id {
	case "USLT", "COMM":
		p.readLanguageFrame(id, data)
		return
	case "APIC":
		if pic, ok := parseAPIC(data); ok {
			t.Picture = append(t.Picture, pic)
		}
		return
	case "PIC":
		if pic, ok := parsePIC(data); ok {
			t.Picture = append(t.Picture, pic)
		}
		return
	}

	if !strings.HasPrefix(id, "T") || id == "TXXX" {
		return
	}
	values := splitValues(data[0], data[1:])
	if len(values) == 0 {
		return
	}

	switch id {
	case "TIT2":
		t.Title = values[0]
	case "TPE1":
		t.Artist = append(t.Artist, values...)
	case "TPE2":
		t.AlbumArtist = append(t.AlbumArtist, values...)
	case "TALB":
		t.Album = values[0]
	case "TYER", "TDRC":
		t.Year = parseYear(values[0])
	case "TRCK":
		t.Track = parsePosition(values[0])
	case "TPOS":
		t.Disk = parsePosition(values[0])
	case "TCON":
		for _, v := range values {
			t.Genre = append(t.Genre, parseID3Genres(v)...)
		}
	}
}

// readLanguageFrame handles USLT and COMM:
// [encoding][language(3)][description\0][text]
func (p *parser) readLanguageFrame(id string, data []byte) {
	if len(data) < 4 {
		return
	}
	enc := data[0]
	lang := strings.TrimRight(string(data[1:4]), "\x00 ")
	rest := data[4:]

	var desc, text string
	if idx := findTerminator(rest, enc); idx >= 0 {
		desc = decodeText(rest[:idx], enc)
		text = decodeText(rest[idx+terminatorSize(enc):], enc)
	} else {
		text = decodeText(rest, enc)
	}

	kind := KindComment
	if id == "USLT" {
		kind = KindLyrics
	}
	p.emit(Frame{ID: id, Kind: kind, Language: lang, Description: desc, Text: text})
}

// parseAPIC reads [encoding][mime\0][type][description\0][data].
func parseAPIC(data []byte) (Picture, bool) {
	if len(data) < 2 {
		return Picture{}, false
	}
	enc := data[0]
	rest := data[1:]
	idx := bytes.IndexByte(rest, 0)
	if idx < 0 {
		return Picture{}, false
	}
	mime := string(rest[:idx])
	rest = rest[idx+1:]
	if len(rest) < 1 {
		return Picture{}, false
	}
	rest = rest[1:]

	idx = findTerminator(rest, enc)
	if idx < 0 {
		return Picture{}, false
	}
	img := rest[idx+terminatorSize(enc):]
	if len(img) == 0 {
		return Picture{}, false
	}
	return Picture{Format: pictureFormat(mime, img), Data: img}, true
}

// parsePIC reads the ID3v2.2 layout [encoding][format(3)][type][description\0][data].
func parsePIC(data []byte) (Picture, bool) {
	if len(data) < 6 {
		return Picture{}, false
	}
	enc := data[0]
	format := strings.TrimRight(string(data[1:4]), "\x00 ")
	rest := data[5:]

	idx := findTerminator(rest, enc)
	if idx < 0 {
		return Picture{}, false
	}
	img := rest[idx+terminatorSize(enc):]
	if len(img) == 0 {
		return Picture{}, false
	}
	return Picture{Format: pictureFormat(format, img), Data: img}, true
}

func validFrameID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// decodeSynchsafe decodes a 28-bit integer stored in the low 7 bits of four bytes.
func decodeSynchsafe(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// removeUnsync reverses the unsynchronisation scheme (0xFF 0x00 -> 0xFF).
func removeUnsync(b []byte) []byte {
	if !bytes.Contains(b, []byte{0xFF, 0x00}) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

func terminatorSize(enc byte) int {
	if enc == 1 || enc == 2 {
		return 2
	}
	return 1
}

// findTerminator returns the index of the first string terminator for the
// encoding, or -1.
func findTerminator(data []byte, enc byte) int {
	if terminatorSize(enc) == 1 {
		return bytes.IndexByte(data, 0)
	}
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return i
		}
	}
	return -1
}

// splitValues splits a text frame payload into its null separated values.
func splitValues(enc byte, data []byte) []string {
	var values []string
	bigEndian := enc == 2
	for len(data) > 0 {
		var chunk []byte
		if idx := findTerminator(data, enc); idx >= 0 {
			chunk, data = data[:idx], data[idx+terminatorSize(enc):]
		} else {
			chunk, data = data, nil
		}

		var s string
		if enc == 1 || enc == 2 {
			s, bigEndian = decodeUTF16(chunk, bigEndian)
		} else {
			s = decodeText(chunk, enc)
		}
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
	}
	return values
}

func decodeText(data []byte, enc byte) string {
	var s string
	switch enc {
	case 1:
		s, _ = decodeUTF16(data, false)
	case 2:
		s, _ = decodeUTF16(data, true)
	case 3:
		s = string(data)
	default:
		s = decodeLatin1(data)
	}
	return strings.TrimRight(s, "\x00")
}

func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// decodeUTF16 decodes UTF-16, honouring a byte order mark when present. It
// returns the byte order that was used so later values without a BOM can
// follow it.
func decodeUTF16(data []byte, bigEndian bool) (string, bool) {
	if len(data) >= 2 {
		switch {
		case data[0] == 0xFF && data[1] == 0xFE:
			bigEndian, data = false, data[2:]
		case data[0] == 0xFE && data[1] == 0xFF:
			bigEndian, data = true, data[2:]
		}
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		if bigEndian {
			units = append(units, binary.BigEndian.Uint16(data[i:]))
		} else {
			units = append(units, binary.LittleEndian.Uint16(data[i:]))
		}
	}
	return string(utf16.Decode(units)), bigEndian
}
