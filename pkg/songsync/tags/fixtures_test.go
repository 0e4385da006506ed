package tags

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
)

var (
	jpegData = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x11, 0x22}, 32)...)
	pngData  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x33}, 48)...)
)

func synchsafe(n int) []byte {
	return []byte{byte(n>>21) & 0x7F, byte(n>>14) & 0x7F, byte(n>>7) & 0x7F, byte(n) & 0x7F}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// id3Tag assembles an ID3v2 tag with 16 bytes of padding.
func id3Tag(version byte, frames ...[]byte) []byte {
	body := append(concat(frames...), make([]byte, 16)...)
	return concat([]byte{'I', 'D', '3', version, 0, 0}, synchsafe(len(body)), body)
}

func v23Frame(id string, payload []byte) []byte {
	return concat([]byte(id), binary.BigEndian.AppendUint32(nil, uint32(len(payload))), []byte{0, 0}, payload)
}

func v24Frame(id string, payload []byte) []byte {
	return concat([]byte(id), synchsafe(len(payload)), []byte{0, 0}, payload)
}

func v22Frame(id string, payload []byte) []byte {
	n := len(payload)
	return concat([]byte(id), []byte{byte(n >> 16), byte(n >> 8), byte(n)}, payload)
}

func latin1Text(s string) []byte { return append([]byte{0}, s...) }
func utf8Text(s string) []byte   { return append([]byte{3}, s...) }

func utf16Text(s string) []byte {
	b := []byte{1, 0xFF, 0xFE}
	for _, r := range s {
		b = binary.LittleEndian.AppendUint16(b, uint16(r))
	}
	return b
}

func usltPayload(lang, desc, text string) []byte {
	return concat([]byte{0}, []byte(lang), []byte(desc), []byte{0}, []byte(text))
}

func apicPayload(mime string, img []byte) []byte {
	return concat([]byte{0}, []byte(mime), []byte{0, 3, 0}, img)
}

// mpegFrame returns one MPEG-1 Layer III frame at 128 kbps, 44.1 kHz,
// stereo (417 bytes). A positive xingFrames embeds a Xing header.
func mpegFrame(xingFrames uint32) []byte {
	f := make([]byte, 417)
	copy(f, []byte{0xFF, 0xFB, 0x90, 0x00})
	if xingFrames > 0 {
		copy(f[36:], "Xing")
		binary.BigEndian.PutUint32(f[40:], 0x1)
		binary.BigEndian.PutUint32(f[44:], xingFrames)
	}
	return f
}

func mpegFrames(n int) []byte {
	return bytes.Repeat(mpegFrame(0), n)
}

func id3v1Tag(title, artist string, track, genre byte) []byte {
	b := make([]byte, 128)
	copy(b, "TAG")
	copy(b[3:33], title)
	copy(b[33:63], artist)
	copy(b[93:97], "1999")
	b[126] = track
	b[127] = genre
	return b
}

func box(typ string, payload ...[]byte) []byte {
	body := concat(payload...)
	return concat(binary.BigEndian.AppendUint32(nil, uint32(8+len(body))), []byte(typ), body)
}

func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

func dataBox(kind uint32, value []byte) []byte {
	return box("data", u32(kind), u32(0), value)
}

func mvhdBox(timescale, duration uint32) []byte {
	return box("mvhd", u32(0), u32(0), u32(0), u32(timescale), u32(duration), make([]byte, 80))
}

// m4aFile builds ftyp, moov (mvhd, udta/meta/ilst) and mdat.
func m4aFile(items ...[]byte) []byte {
	meta := box("meta", u32(0), box("hdlr", make([]byte, 25)), box("ilst", items...))
	return concat(
		box("ftyp", []byte("M4A "), u32(0), []byte("M4A mp42isom")),
		box("moov", mvhdBox(1000, 215500), box("udta", meta)),
		box("mdat", bytes.Repeat([]byte{0x42}, 64)),
	)
}

func lace(pkt []byte) []byte {
	return append(bytes.Repeat([]byte{255}, len(pkt)/255), byte(len(pkt)%255))
}

func buildOggPage(flags byte, granule int64, serial, seq uint32, segs, data []byte) []byte {
	b := append([]byte("OggS"), 0, flags)
	b = binary.LittleEndian.AppendUint64(b, uint64(granule))
	b = binary.LittleEndian.AppendUint32(b, serial)
	b = binary.LittleEndian.AppendUint32(b, seq)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = append(b, byte(len(segs)))
	return concat(b, segs, data)
}

// oggStream puts the first header on its own page, laces the remaining
// headers across as many pages as needed and ends with one audio page.
func oggStream(serial uint32, granule int64, headers ...[]byte) []byte {
	var out []byte
	var seq uint32
	page := func(flags byte, gp int64, segs, data []byte) {
		out = append(out, buildOggPage(flags, gp, serial, seq, segs, data)...)
		seq++
	}
	page(0x02, 0, lace(headers[0]), headers[0])

	var segs, data []byte
	var flags byte
	for _, pkt := range headers[1:] {
		off := 0
		for i, s := range lace(pkt) {
			if len(segs) == 255 {
				page(flags, 0, segs, data)
				segs, data, flags = nil, nil, 0
				if i > 0 {
					flags = 0x01
				}
			}
			segs = append(segs, s)
			data = append(data, pkt[off:off+int(s)]...)
			off += int(s)
		}
	}
	if len(segs) > 0 {
		page(flags, 0, segs, data)
	}
	audio := []byte{0x00, 0x01, 0x02}
	page(0x04, granule, lace(audio), audio)
	return out
}

func commentBlock(comments ...string) []byte {
	vendor := "test vendor"
	b := binary.LittleEndian.AppendUint32(nil, uint32(len(vendor)))
	b = append(b, vendor...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(comments)))
	for _, c := range comments {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(c)))
		b = append(b, c...)
	}
	return b
}

func vorbisIdent(rate uint32) []byte {
	b := append([]byte{0x01}, "vorbis"...)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = append(b, 2)
	b = binary.LittleEndian.AppendUint32(b, rate)
	b = append(b, make([]byte, 12)...)
	return append(b, 0xB8, 0x01)
}

func vorbisComments(comments ...string) []byte {
	return concat([]byte{0x03}, []byte("vorbis"), commentBlock(comments...), []byte{0x01})
}

func opusHead(preSkip uint16) []byte {
	b := append([]byte("OpusHead"), 1, 2)
	b = binary.LittleEndian.AppendUint16(b, preSkip)
	b = binary.LittleEndian.AppendUint32(b, 48000)
	return append(b, 0, 0, 0)
}

func opusTags(comments ...string) []byte {
	return concat([]byte("OpusTags"), commentBlock(comments...))
}

func pictureBlock(mime string, img []byte) string {
	b := u32(3)
	b = append(b, u32(uint32(len(mime)))...)
	b = append(b, mime...)
	b = append(b, u32(0)...)
	b = append(b, u32(300)...)
	b = append(b, u32(300)...)
	b = append(b, u32(24)...)
	b = append(b, u32(0)...)
	b = append(b, u32(uint32(len(img)))...)
	b = append(b, img...)
	return base64.StdEncoding.EncodeToString(b)
}

func parseBytes(data []byte, opts ...Option) (*Tags, error) {
	return Parse(bytes.NewReader(data), int64(len(data)), "fixture", opts...)
}

func collectFrames(dst *[]Frame) Option {
	return WithFrameHandler(func(f Frame) { *dst = append(*dst, f) })
}
